package guest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCartTarget struct {
	payloads []CartItemPayload
	failFor  map[string]error
}

func (f *fakeCartTarget) AddItem(_ context.Context, payload CartItemPayload) error {
	if err, ok := f.failFor[payload.ListingID]; ok {
		return err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeWishlistTarget struct {
	listingIDs []string
	failFor    map[string]error
}

func (f *fakeWishlistTarget) AddItem(_ context.Context, listingID string) error {
	if err, ok := f.failFor[listingID]; ok {
		return err
	}
	f.listingIDs = append(f.listingIDs, listingID)
	return nil
}

type recordingNotifier struct {
	successes []string
	warnings  []string
}

func (n *recordingNotifier) Success(_ context.Context, msg string) {
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Warn(_ context.Context, msg string) {
	n.warnings = append(n.warnings, msg)
}

func newMigratorFixture(t *testing.T) (*Service, *fakeCartTarget, *fakeWishlistTarget, *recordingNotifier, *Migrator) {
	t.Helper()
	svc := newTestService(t)
	cart := &fakeCartTarget{}
	wishlist := &fakeWishlistTarget{}
	notifier := &recordingNotifier{}
	migrator, err := NewMigrator(MigratorParams{
		Guest:       svc,
		Cart:        cart,
		Wishlist:    wishlist,
		Notifier:    notifier,
		ItemTimeout: time.Second,
	})
	require.NoError(t, err)
	return svc, cart, wishlist, notifier, migrator
}

func TestMigratorNoGuestDataIssuesNoRequests(t *testing.T) {
	_, cart, wishlist, notifier, migrator := newMigratorFixture(t)

	report := migrator.Run(context.Background())

	require.False(t, report.Attempted())
	require.Empty(t, cart.payloads)
	require.Empty(t, wishlist.listingIDs)
	require.Empty(t, notifier.successes)
	require.Empty(t, notifier.warnings)
}

func TestMigratorReplaysCartInInsertionOrder(t *testing.T) {
	svc, cart, wishlist, _, migrator := newMigratorFixture(t)
	svc.AddToCart(fakeListing("A", 100), 2)
	svc.AddToCart(fakeListing("B", 50), 1)
	svc.AddToWishlist(fakeListing("C", 10))

	report := migrator.Run(context.Background())

	require.Len(t, cart.payloads, 2)
	require.Equal(t, "A", cart.payloads[0].ListingID)
	require.Equal(t, 2, cart.payloads[0].Quantity)
	require.True(t, cart.payloads[0].UnitPrice.Equal(decimal.NewFromInt(100)))
	require.Equal(t, "B", cart.payloads[1].ListingID)
	require.Equal(t, []string{"C"}, wishlist.listingIDs)

	require.Equal(t, 2, report.CartMigrated)
	require.Equal(t, 1, report.WishlistMigrated)
	require.NoError(t, report.Err())

	// Local state is gone once the run settles.
	require.False(t, svc.HasAnyGuestData())
}

func TestMigratorPartialFailureStillClearsAndWarnsOnce(t *testing.T) {
	svc, cart, _, notifier, migrator := newMigratorFixture(t)
	svc.AddToCart(fakeListing("A", 100), 1)
	svc.AddToCart(fakeListing("B", 50), 1)
	cart.failFor = map[string]error{"B": errors.New("connection reset")}

	report := migrator.Run(context.Background())

	// Item A landed server side despite B failing.
	require.Len(t, cart.payloads, 1)
	require.Equal(t, "A", cart.payloads[0].ListingID)

	require.Equal(t, 2, report.CartAttempted)
	require.Equal(t, 1, report.CartMigrated)
	require.Len(t, report.Failed(), 1)
	require.Equal(t, "B", report.Failed()[0].ListingID)
	require.Error(t, report.Err())

	// Cleared unconditionally, one warning raised.
	require.Empty(t, svc.Cart().Items)
	require.False(t, svc.HasAnyGuestData())
	require.Len(t, notifier.warnings, 1)
	require.Len(t, notifier.successes, 1)
}

func TestMigratorFailureDoesNotAbortWishlist(t *testing.T) {
	svc, cart, wishlist, _, migrator := newMigratorFixture(t)
	svc.AddToCart(fakeListing("A", 10), 1)
	svc.AddToWishlist(fakeListing("W1", 5))
	svc.AddToWishlist(fakeListing("W2", 5))
	cart.failFor = map[string]error{"A": errors.New("boom")}
	wishlist.failFor = map[string]error{"W1": errors.New("boom")}

	report := migrator.Run(context.Background())

	require.Equal(t, []string{"W2"}, wishlist.listingIDs)
	require.Equal(t, 0, report.CartMigrated)
	require.Equal(t, 1, report.WishlistMigrated)
	require.Len(t, report.Failed(), 2)
}

type blockingCartTarget struct{}

func (blockingCartTarget) AddItem(ctx context.Context, _ CartItemPayload) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestMigratorItemTimeoutCountsAsFailure(t *testing.T) {
	svc := newTestService(t)
	svc.AddToCart(fakeListing("A", 10), 1)

	migrator, err := NewMigrator(MigratorParams{
		Guest:       svc,
		Cart:        blockingCartTarget{},
		Wishlist:    &fakeWishlistTarget{},
		ItemTimeout: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	report := migrator.Run(context.Background())
	require.Len(t, report.Failed(), 1)
	require.ErrorIs(t, report.Failed()[0].Err, context.DeadlineExceeded)
	require.False(t, svc.HasAnyGuestData())
}

func TestNewMigratorValidatesDependencies(t *testing.T) {
	svc := newTestService(t)
	_, err := NewMigrator(MigratorParams{Cart: &fakeCartTarget{}, Wishlist: &fakeWishlistTarget{}})
	require.Error(t, err)
	_, err = NewMigrator(MigratorParams{Guest: svc, Wishlist: &fakeWishlistTarget{}})
	require.Error(t, err)
	_, err = NewMigrator(MigratorParams{Guest: svc, Cart: &fakeCartTarget{}})
	require.Error(t, err)
}
