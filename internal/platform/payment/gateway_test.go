package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDryRunGateway_AlwaysSucceeds(t *testing.T) {
	g := NewDryRunGateway(zap.NewNop().Sugar())

	res, err := g.Charge(context.Background(), "tok_123", 8000, "USD", "occ-1")
	require.NoError(t, err)
	require.Equal(t, ResultSucceeded, res)
}
