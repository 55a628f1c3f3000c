package listmirror_test

import (
	"testing"

	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/listmirror"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func threeItems() []models.Item {
	return []models.Item{
		{ID: primitive.NewObjectID(), Title: "first"},
		{ID: primitive.NewObjectID(), Title: "second"},
		{ID: primitive.NewObjectID(), Title: "third"},
	}
}

func titles(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestSet_StoresCopy(t *testing.T) {
	m := listmirror.New()
	items := threeItems()
	m.Set("v", items)
	items[0].Title = "changed"

	got, ok := m.List("v")
	require.True(t, ok)
	assert.Equal(t, "first", got[0].Title)
}

func TestList_Unknown(t *testing.T) {
	m := listmirror.New()
	_, ok := m.List("nobody")
	assert.False(t, ok)
}

func TestRemove_ThenRestore_PutsBackAtIndex(t *testing.T) {
	m := listmirror.New()
	items := threeItems()
	m.Set("v", items)

	restore := m.Remove("v", items[1].ID)
	got, _ := m.List("v")
	assert.Equal(t, []string{"first", "third"}, titles(got))

	restore()
	got, _ = m.List("v")
	assert.Equal(t, []string{"first", "second", "third"}, titles(got))
}

func TestRestore_Twice_DoesNotDuplicate(t *testing.T) {
	m := listmirror.New()
	items := threeItems()
	m.Set("v", items)

	restore := m.Remove("v", items[0].ID)
	restore()
	restore()

	got, _ := m.List("v")
	assert.Len(t, got, 3)
}

func TestRemove_Missing_IsNoop(t *testing.T) {
	m := listmirror.New()
	m.Set("v", threeItems())

	restore := m.Remove("v", primitive.NewObjectID())
	restore()

	got, _ := m.List("v")
	assert.Len(t, got, 3)
}

func TestFind(t *testing.T) {
	m := listmirror.New()
	items := threeItems()
	m.Set("v", items)

	it, ok := m.Find("v", items[2].ID)
	require.True(t, ok)
	assert.Equal(t, "third", it.Title)

	_, ok = m.Find("other", items[2].ID)
	assert.False(t, ok)
}

func TestSubscribe_DropsOnSignOutAndDelete(t *testing.T) {
	m := listmirror.New()
	b := authstate.NewBroker()
	unsub := m.Subscribe(b)
	defer unsub()

	m.Set("a", threeItems())
	m.Set("b", threeItems())

	b.Publish(authstate.Event{Kind: authstate.SignedIn, AccountID: "a"})
	assert.Equal(t, 2, m.Len())

	b.Publish(authstate.Event{Kind: authstate.SignedOut, AccountID: "a"})
	b.Publish(authstate.Event{Kind: authstate.AccountDeleted, AccountID: "b"})
	assert.Equal(t, 0, m.Len())
}
