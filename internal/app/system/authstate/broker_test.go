package authstate_test

import (
	"sync"
	"testing"

	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	b := authstate.NewBroker()

	var got1, got2 []authstate.Event
	b.Subscribe(func(e authstate.Event) { got1 = append(got1, e) })
	b.Subscribe(func(e authstate.Event) { got2 = append(got2, e) })

	b.Publish(authstate.Event{Kind: authstate.SignedIn, AccountID: "a1"})

	require.Len(t, got1, 1)
	require.Len(t, got2, 1)
	assert.Equal(t, "a1", got1[0].AccountID)
	assert.False(t, got1[0].At.IsZero(), "At should be stamped")
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	b := authstate.NewBroker()

	calls := 0
	unsub := b.Subscribe(func(authstate.Event) { calls++ })
	b.Publish(authstate.Event{Kind: authstate.SignedOut})
	unsub()
	unsub()
	b.Publish(authstate.Event{Kind: authstate.SignedOut})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Len())
}

func TestPublish_NilBrokerIsNoop(t *testing.T) {
	var b *authstate.Broker
	assert.NotPanics(t, func() {
		b.Publish(authstate.Event{Kind: authstate.AccountDeleted})
	})
}

func TestBroker_ConcurrentUse(t *testing.T) {
	b := authstate.NewBroker()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := b.Subscribe(func(authstate.Event) {})
			unsub()
		}()
		go func() {
			defer wg.Done()
			b.Publish(authstate.Event{Kind: authstate.SignedIn})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, b.Len())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "signed_in", authstate.SignedIn.String())
	assert.Equal(t, "signed_out", authstate.SignedOut.String())
	assert.Equal(t, "account_deleted", authstate.AccountDeleted.String())
	assert.Equal(t, "unknown", authstate.Kind(0).String())
}
