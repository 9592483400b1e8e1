package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aada-api/internal/domain"
)

// --- fakes ---

type memInvoices struct {
	items   []domain.Invoice
	listErr error
	markErr map[string]error
}

func (m *memInvoices) ListWithBillingID(_ context.Context) ([]domain.Invoice, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Invoice, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memInvoices) find(id string) *domain.Invoice {
	for i := range m.items {
		if m.items[i].InvoiceID == id {
			return &m.items[i]
		}
	}
	return nil
}

func (m *memInvoices) MarkPaid(_ context.Context, id string) (bool, error) {
	inv := m.find(id)
	if inv == nil {
		return false, domain.ErrNotFound
	}
	if inv.Status == domain.InvoicePaid {
		return false, nil
	}
	inv.Status = domain.InvoicePaid
	return true, nil
}

func (m *memInvoices) MarkReminderSent(_ context.Context, id string) error {
	if err := m.markErr[id]; err != nil {
		return err
	}
	m.find(id).ReminderSent = true
	return nil
}

func (m *memInvoices) MarkLateNoticeSent(_ context.Context, id string) error {
	if err := m.markErr[id]; err != nil {
		return err
	}
	m.find(id).LateNoticeSent = true
	return nil
}

func (m *memInvoices) MarkReceiptSent(_ context.Context, id string) error {
	if err := m.markErr[id]; err != nil {
		return err
	}
	m.find(id).ReceiptSent = true
	return nil
}

type memStudents map[string]*domain.Student

func (m memStudents) Get(_ context.Context, id string) (*domain.Student, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

type memNotifications struct {
	created []*domain.Notification
	err     error
}

func (m *memNotifications) Create(_ context.Context, n *domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, n)
	return nil
}

type mockBilling struct{ mock.Mock }

func (m *mockBilling) IsPaid(ctx context.Context, billingID string) (bool, error) {
	args := m.Called(ctx, billingID)
	return args.Bool(0), args.Error(1)
}

type mockPush struct{ mock.Mock }

func (m *mockPush) Send(ctx context.Context, token, title, body string) error {
	return m.Called(ctx, token, title, body).Error(0)
}

// stallingPush hangs on its first call until the context ends, then succeeds.
type stallingPush struct {
	calls     int
	deadlines []bool
}

func (p *stallingPush) Send(ctx context.Context, _, _, _ string) error {
	p.calls++
	_, ok := ctx.Deadline()
	p.deadlines = append(p.deadlines, ok)
	if p.calls == 1 {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// --- helpers ---

func strPtr(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func invoice(id, due string) domain.Invoice {
	return domain.Invoice{
		InvoiceID:        id,
		StudentID:        "stu-1",
		DueDate:          day(due),
		AmountCents:      10000,
		Status:           domain.InvoicePending,
		BillingInvoiceID: strPtr("sq-" + id),
	}
}

type fixture struct {
	invoices      *memInvoices
	students      memStudents
	notifications *memNotifications
	billing       *mockBilling
	push          *mockPush
	now           time.Time
	loc           *time.Location
	sender        domain.PushSender
	pushTimeout   time.Duration
}

func newFixture(now string, invs ...domain.Invoice) *fixture {
	return &fixture{
		invoices: &memInvoices{items: invs, markErr: map[string]error{}},
		students: memStudents{
			"stu-1": {StudentID: "stu-1", Name: "Ana", DeviceToken: strPtr("tok-1")},
		},
		notifications: &memNotifications{},
		billing:       new(mockBilling),
		push:          new(mockPush),
		now:           day(now).Add(9 * time.Hour),
	}
}

func (f *fixture) job() *Job {
	var push domain.PushSender = f.push
	if f.sender != nil {
		push = f.sender
	}
	return NewJob(Deps{
		Invoices:      f.invoices,
		Students:      f.students,
		Notifications: f.notifications,
		Billing:       f.billing,
		Push:          push,
		PushTimeout:   f.pushTimeout,
		Now:           func() time.Time { return f.now },
		Location:      f.loc,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// --- tests ---

func TestRun_ReminderThreeDaysBeforeDue(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(false, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleDueSoon, "Your payment of $100.00 is due on 2025-07-04.").Return(nil).Once()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.RemindersSent)
	assert.True(t, f.invoices.items[0].ReminderSent)
	assert.False(t, f.invoices.items[0].LateNoticeSent)
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, domain.NotificationPaymentReminder, f.notifications.created[0].Kind)
	assert.Equal(t, "inv-1", *f.notifications.created[0].InvoiceID)
	f.push.AssertExpectations(t)
}

func TestRun_ReminderIsSentOnlyOnce(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(false, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleDueSoon, mock.Anything).Return(nil).Once()

	j := f.job()
	_, err := j.Run(context.Background())
	require.NoError(t, err)
	rep, err := j.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rep.RemindersSent)
	f.push.AssertNumberOfCalls(t, "Send", 1)
}

func TestRun_NoReminderOutsideLeadWindow(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-05"), invoice("inv-2", "2025-07-03"))
	f.billing.On("IsPaid", mock.Anything, mock.Anything).Return(false, nil)

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, rep.Scanned)
	assert.Zero(t, rep.RemindersSent)
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_LateNoticeThreshold(t *testing.T) {
	f := newFixture("2025-07-10",
		invoice("one-day", "2025-07-09"),
		invoice("two-days", "2025-07-08"),
		invoice("ten-days", "2025-06-30"),
	)
	f.billing.On("IsPaid", mock.Anything, mock.Anything).Return(false, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleOverdue, "Your payment of $100.00 was due on 2025-07-08. Please pay as soon as possible.").Return(nil).Once()
	f.push.On("Send", mock.Anything, "tok-1", TitleOverdue, "Your payment of $100.00 was due on 2025-06-30. Please pay as soon as possible.").Return(nil).Once()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, rep.LateNoticesSent)
	assert.False(t, f.invoices.find("one-day").LateNoticeSent)
	assert.True(t, f.invoices.find("two-days").LateNoticeSent)
	assert.True(t, f.invoices.find("ten-days").LateNoticeSent)
	f.push.AssertExpectations(t)
}

func TestRun_PaidInBillingMarksPaidAndSendsReceipt(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(true, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleReceived, "Thanks, we received your payment for $100.00.").Return(nil).Once()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.MarkedPaid)
	assert.Equal(t, 1, rep.ReceiptsSent)
	assert.Zero(t, rep.RemindersSent)
	assert.Equal(t, domain.InvoicePaid, f.invoices.items[0].Status)
	assert.True(t, f.invoices.items[0].ReceiptSent)
	assert.False(t, f.invoices.items[0].ReminderSent)
	f.push.AssertExpectations(t)
}

func TestRun_PaidInvoiceWithReceiptIsNotRechecked(t *testing.T) {
	inv := invoice("inv-1", "2025-07-04")
	inv.Status = domain.InvoicePaid
	inv.ReceiptSent = true
	f := newFixture("2025-07-01", inv)

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)
	f.billing.AssertNotCalled(t, "IsPaid", mock.Anything, mock.Anything)
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_PaidElsewhereSendsReceiptOnce(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(true, nil).Run(func(mock.Arguments) {
		// another writer flips the row between our read and our update
		f.invoices.items[0].Status = domain.InvoicePaid
	})
	f.push.On("Send", mock.Anything, "tok-1", TitleReceived, mock.Anything).Return(nil).Once()

	j := f.job()
	rep, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.MarkedPaid)
	assert.Equal(t, 1, rep.ReceiptsSent)

	rep, err = j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)
	f.push.AssertNumberOfCalls(t, "Send", 1)
}

func TestRun_FailedReceiptIsRetriedNextRun(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(true, nil).Once()
	f.push.On("Send", mock.Anything, "tok-1", TitleReceived, mock.Anything).Return(errors.New("unavailable")).Once()
	f.push.On("Send", mock.Anything, "tok-1", TitleReceived, mock.Anything).Return(nil).Once()

	j := f.job()
	first, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedPaid)
	assert.Equal(t, 1, first.Failures)
	assert.False(t, f.invoices.items[0].ReceiptSent)

	second, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.MarkedPaid)
	assert.Equal(t, 1, second.ReceiptsSent)
	assert.True(t, f.invoices.items[0].ReceiptSent)
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, domain.NotificationPaymentReceived, f.notifications.created[0].Kind)
	f.billing.AssertNumberOfCalls(t, "IsPaid", 1)
	f.push.AssertExpectations(t)
}

func TestRun_ReceiptWaitsForDeviceToken(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.students["stu-1"].DeviceToken = nil
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(true, nil).Once()
	f.push.On("Send", mock.Anything, "tok-2", TitleReceived, mock.Anything).Return(nil).Once()

	j := f.job()
	rep, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.ReceiptsSent)
	assert.False(t, f.invoices.items[0].ReceiptSent)

	f.students["stu-1"].DeviceToken = strPtr("tok-2")
	rep, err = j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.ReceiptsSent)
	f.push.AssertExpectations(t)
}

func TestRun_BillingErrorTreatedAsUnpaid(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(false, domain.ErrUpstream)
	f.push.On("Send", mock.Anything, "tok-1", TitleDueSoon, mock.Anything).Return(nil).Once()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.RemindersSent)
	assert.Equal(t, domain.InvoicePending, f.invoices.items[0].Status)
}

func TestRun_NoDeviceTokenLeavesFlagUnset(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.students["stu-1"].DeviceToken = nil
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(false, nil)

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, rep.RemindersSent)
	assert.Zero(t, rep.Failures)
	assert.False(t, f.invoices.items[0].ReminderSent)
	assert.Empty(t, f.notifications.created)
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_PushFailureLeavesFlagUnsetForRetry(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(false, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleDueSoon, mock.Anything).Return(errors.New("unregistered")).Once()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failures)
	assert.False(t, f.invoices.items[0].ReminderSent)
}

func TestRun_StalledPushTimesOutAndRunContinues(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"), invoice("inv-2", "2025-07-04"))
	sender := &stallingPush{}
	f.sender = sender
	f.pushTimeout = 20 * time.Millisecond
	f.billing.On("IsPaid", mock.Anything, mock.Anything).Return(false, nil)

	done := make(chan struct{})
	var (
		rep Report
		err error
	)
	go func() {
		defer close(done)
		rep, err = f.job().Run(context.Background())
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish while a push was stalled")
	}

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failures)
	assert.Equal(t, 1, rep.RemindersSent)
	assert.False(t, f.invoices.find("inv-1").ReminderSent)
	assert.True(t, f.invoices.find("inv-2").ReminderSent)
	assert.Equal(t, []bool{true, true}, sender.deadlines)
}

func TestNewJob_DefaultPushTimeout(t *testing.T) {
	j := NewJob(Deps{})
	assert.Equal(t, domain.DefaultPushTimeout, j.pushTimeout)
}

func TestRun_MissingStudentIsSkipped(t *testing.T) {
	orphan := invoice("orphan", "2025-07-04")
	orphan.StudentID = "ghost"
	f := newFixture("2025-07-01", orphan, invoice("inv-2", "2025-07-04"))
	f.billing.On("IsPaid", mock.Anything, "sq-inv-2").Return(false, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleDueSoon, mock.Anything).Return(nil).Once()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.RemindersSent)
	f.billing.AssertNotCalled(t, "IsPaid", mock.Anything, "sq-orphan")
}

func TestRun_FlagWriteFailureDoesNotStopRun(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"), invoice("inv-2", "2025-07-04"))
	f.invoices.markErr["inv-1"] = domain.ErrUnavailable
	f.billing.On("IsPaid", mock.Anything, mock.Anything).Return(false, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleDueSoon, mock.Anything).Return(nil).Twice()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failures)
	assert.Equal(t, 1, rep.RemindersSent)
	assert.True(t, f.invoices.find("inv-2").ReminderSent)
}

func TestRun_NotificationRecordFailureKeepsFlag(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	f.notifications.err = errors.New("db down")
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(false, nil)
	f.push.On("Send", mock.Anything, "tok-1", TitleDueSoon, mock.Anything).Return(nil).Once()

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.RemindersSent)
	assert.True(t, f.invoices.items[0].ReminderSent)
}

func TestRun_TodayFollowsConfiguredTimezone(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	// 02:00 UTC on July 1st is still June 30th seven hours west.
	f.now = day("2025-07-01").Add(2 * time.Hour)
	f.loc = time.FixedZone("UTC-7", -7*3600)
	f.billing.On("IsPaid", mock.Anything, "sq-inv-1").Return(false, nil)

	rep, err := f.job().Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, rep.RemindersSent)
}

func TestRun_ListFailureAborts(t *testing.T) {
	f := newFixture("2025-07-01")
	f.invoices.listErr = domain.ErrUnavailable

	_, err := f.job().Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestRun_CancelledContextStops(t *testing.T) {
	f := newFixture("2025-07-01", invoice("inv-1", "2025-07-04"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := f.job().Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rep.Scanned)
}
