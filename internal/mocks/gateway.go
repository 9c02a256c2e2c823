package mocks

import (
	"context"

	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"github.com/stretchr/testify/mock"
)

type Gateway struct {
	mock.Mock
}

func (g *Gateway) CreateOrder(ctx context.Context, request payprovider.CreateOrderRequest) (payprovider.CreateOrderResponse, error) {
	args := g.Called(ctx, request)
	return args.Get(0).(payprovider.CreateOrderResponse), args.Error(1)
}

func (g *Gateway) GetStatus(ctx context.Context, orderRef string) (payprovider.ConfirmationEvent, error) {
	args := g.Called(ctx, orderRef)
	return args.Get(0).(payprovider.ConfirmationEvent), args.Error(1)
}

func (g *Gateway) VerifySignature(payload map[string]string) bool {
	args := g.Called(payload)
	return args.Bool(0)
}

func (g *Gateway) ParseCallback(raw []byte) (payprovider.ConfirmationEvent, error) {
	args := g.Called(raw)
	return args.Get(0).(payprovider.ConfirmationEvent), args.Error(1)
}
