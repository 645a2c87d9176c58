package services

import (
	"context"
	"testing"
	"time"

	fbig "github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/fil"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

func TestPaymentManager_CreatePayment(t *testing.T) {
	network := newFakeNetwork()
	network.gate = make(chan struct{})
	network.entered = make(chan struct{}, 1)
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, network, testLog)

	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		id, err := m.CreatePayment(context.Background(), "ds-1", "0xSeller", fil.MustParse("2.5"))
		done <- result{id, err}
	}()

	<-network.entered
	assert.True(t, m.State().Processing)

	close(network.gate)
	r := <-done
	require.NoError(t, r.err)
	assert.NotEmpty(t, r.id)
	assert.Contains(t, r.id, common.TransferIDPrefix)

	st := m.State()
	assert.False(t, st.Processing)
	assert.Equal(t, r.id, st.LastTransferID)
	assert.Empty(t, st.Error)

	// second payment gets a different id
	network.gate = nil
	network.entered = nil
	id2, err := m.CreatePayment(context.Background(), "ds-1", "0xSeller", fil.MustParse("2.5"))
	require.NoError(t, err)
	assert.NotEqual(t, r.id, id2)
}

func TestPaymentManager_CreatePayment_NotConnected(t *testing.T) {
	network := newFakeNetwork()
	m := NewPaymentManager(fakeIdentity{}, network, testLog)

	_, err := m.CreatePayment(context.Background(), "ds-1", "0xSeller", fil.MustParse("1"))
	require.ErrorIs(t, err, common.ErrNotConnected)
	assert.Equal(t, common.ErrNotConnected.Error(), m.State().Error)
	assert.False(t, m.State().Processing)
	assert.Empty(t, network.transfers)
}

func TestPaymentManager_CreatePayment_Validation(t *testing.T) {
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, newFakeNetwork(), testLog)
	ctx := context.Background()

	_, err := m.CreatePayment(ctx, "ds-1", "0xSeller", fbig.Zero())
	require.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = m.CreatePayment(ctx, "ds-1", "0xSeller", fbig.Int{})
	require.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = m.CreatePayment(ctx, "ds-1", "", fil.MustParse("1"))
	require.ErrorIs(t, err, common.ErrInvalidAddress)

	assert.False(t, m.State().Processing)
}

func TestPaymentManager_CreatePayment_NetworkError(t *testing.T) {
	network := newFakeNetwork()
	network.createErr = errBoom
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, network, testLog)

	id, err := m.CreatePayment(context.Background(), "ds-1", "0xSeller", fil.MustParse("1"))
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, id)
	assert.Contains(t, m.State().Error, "boom")
	assert.False(t, m.State().Processing)
}

func TestPaymentManager_CreatePayment_SingleFlight(t *testing.T) {
	network := newFakeNetwork()
	network.gate = make(chan struct{})
	network.entered = make(chan struct{}, 1)
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, network, testLog)

	done := make(chan error, 1)
	go func() {
		_, err := m.CreatePayment(context.Background(), "ds-1", "0xSeller", fil.MustParse("1"))
		done <- err
	}()
	<-network.entered

	_, err := m.CreatePayment(context.Background(), "ds-2", "0xSeller", fil.MustParse("1"))
	require.ErrorIs(t, err, common.ErrBusy)
	assert.Empty(t, m.State().Error)

	close(network.gate)
	require.NoError(t, <-done)
	assert.Len(t, network.transfers, 1)
}

func TestPaymentManager_ActiveStreams_Disconnected(t *testing.T) {
	m := NewPaymentManager(fakeIdentity{}, newFakeNetwork(), testLog)

	list, err := m.ActiveStreams(context.Background())
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPaymentManager_ActiveStreams_OnlyActive(t *testing.T) {
	network := newFakeNetwork()
	ended := time.Now()
	network.extra = []models.Transfer{
		{ID: "pay_done", Payer: "0xBuyer", Status: models.TransferCompleted, EndTime: &ended},
	}
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, network, testLog)
	ctx := context.Background()

	id, err := m.CreatePayment(ctx, "ds-1", "0xSeller", fil.MustParse("2.5"))
	require.NoError(t, err)

	list, err := m.ActiveStreams(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	for _, tr := range list {
		assert.Nil(t, tr.EndTime)
		assert.Equal(t, models.TransferActive, tr.Status)
	}
}

func TestPaymentManager_ActiveStreams_Error(t *testing.T) {
	network := newFakeNetwork()
	network.listErr = errBoom
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, network, testLog)

	_, err := m.ActiveStreams(context.Background())
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, m.State().Error, "boom")
}

func TestPaymentManager_CancelAndStatus(t *testing.T) {
	network := newFakeNetwork()
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, network, testLog)
	ctx := context.Background()

	id, err := m.CreatePayment(ctx, "ds-1", "0xSeller", fil.MustParse("2.5"))
	require.NoError(t, err)

	st, err := m.PaymentStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TransferActive, st.Status)
	assert.Nil(t, st.EndTime)

	require.NoError(t, m.CancelPayment(ctx, id))

	st, err = m.PaymentStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TransferCancelled, st.Status)
	assert.NotNil(t, st.EndTime)

	err = m.CancelPayment(ctx, id)
	require.ErrorIs(t, err, common.ErrInvalidTransition)

	list, err := m.ActiveStreams(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPaymentManager_Cancel_NotConnected(t *testing.T) {
	m := NewPaymentManager(fakeIdentity{}, newFakeNetwork(), testLog)
	require.ErrorIs(t, m.CancelPayment(context.Background(), "pay_x"), common.ErrNotConnected)
}

func TestPaymentManager_PaymentStatus_NoSessionNeeded(t *testing.T) {
	network := newFakeNetwork()
	network.transfers["pay_1"] = models.Transfer{ID: "pay_1", Status: models.TransferActive, Amount: fbig.NewInt(1)}
	m := NewPaymentManager(fakeIdentity{}, network, testLog)

	st, err := m.PaymentStatus(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_1", st.ID)

	_, err = m.PaymentStatus(context.Background(), "pay_missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPaymentManager_History(t *testing.T) {
	network := newFakeNetwork()
	network.transfers["pay_in"] = models.Transfer{ID: "pay_in", Payer: "0xOther", Recipient: "0xBuyer", Status: models.TransferActive}
	m := NewPaymentManager(fakeIdentity{addr: "0xBuyer"}, network, testLog)

	list, err := m.History(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pay_in", list[0].ID)

	empty, err := NewPaymentManager(fakeIdentity{}, network, testLog).History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
