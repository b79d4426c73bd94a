package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// QRArtifact is the payment reference handed back to the customer for
// QR orders. It lives only in the create-order response.
type QRArtifact struct {
	Reference string  `json:"reference"`
	QRString  string  `json:"qr_string"`
	Amount    float64 `json:"amount"`
}

// QRGenerator produces a payment reference for an order. From the order
// engine's point of view this is a pure function of (orderID, amount).
type QRGenerator interface {
	Generate(orderID uint, amount float64) (*QRArtifact, error)
}

// MidtransQR charges a QRIS transaction through the Midtrans core API.
type MidtransQR struct {
	client coreapi.Client
}

func NewMidtransQR(serverKey string, production bool) *MidtransQR {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransQR{}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransQR) Generate(orderID uint, amount float64) (*QRArtifact, error) {
	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			// Midtrans requires globally unique order ids; suffix with a
			// nonce so retried references never collide.
			OrderID:  fmt.Sprintf("CANTEEN-%d-%s", orderID, uuid.NewString()[:8]),
			GrossAmt: int64(amount),
		},
	}
	resp, merr := g.client.ChargeTransaction(req)
	if merr != nil {
		return nil, merr
	}
	return &QRArtifact{
		Reference: resp.TransactionID,
		QRString:  resp.QRString,
		Amount:    amount,
	}, nil
}

// LocalQR is the fallback generator used when no Midtrans server key is
// configured, and in tests.
type LocalQR struct{}

func (LocalQR) Generate(orderID uint, amount float64) (*QRArtifact, error) {
	ref := uuid.NewString()
	return &QRArtifact{
		Reference: ref,
		QRString:  fmt.Sprintf("CANTEEN|%d|%.2f|%s", orderID, amount, ref),
		Amount:    amount,
	}, nil
}
