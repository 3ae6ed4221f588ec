package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/events"
	"tourbook/internal/models"
	"tourbook/internal/repository"
)

type stubCatalog struct {
	tours map[string]models.Tour
}

func (c *stubCatalog) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	tour, ok := c.tours[id]
	if !ok {
		return nil, errors.New("activity not found")
	}
	return &tour, nil
}

func (c *stubCatalog) ListTours(ctx context.Context) ([]models.Tour, error) {
	out := make([]models.Tour, 0, len(c.tours))
	for _, t := range c.tours {
		out = append(out, t)
	}
	return out, nil
}

type stubDispatcher struct {
	mode    string
	fail    bool
	failMsg string
	calls   int
}

func (d *stubDispatcher) Mode() string { return d.mode }

func (d *stubDispatcher) Submit(ctx context.Context, draft *models.BookingDraft) (*models.CheckoutResult, error) {
	d.calls++
	if d.fail {
		draft.Submission = models.SubmissionFailed
		draft.FailureReason = d.failMsg
		return &models.CheckoutResult{Message: d.failMsg}, nil
	}
	draft.Submission = models.SubmissionSucceeded
	draft.BookingID = "42"
	return &models.CheckoutResult{BookingID: "42"}, nil
}

type wizardEnv struct {
	service    *Service
	drafts     *repository.MemoryDraftRepository
	dispatcher *stubDispatcher
	published  *[]string
}

func newWizardEnv(t *testing.T) *wizardEnv {
	t.Helper()

	catalog := &stubCatalog{tours: map[string]models.Tour{
		"tour-7": {ID: "tour-7", Name: "Phi Phi Islands", Price: 100, StartTimes: []string{"08:30", "13:00"}},
	}}
	dispatcher := &stubDispatcher{mode: models.ModeDirect}
	drafts := repository.NewMemoryDraftRepository(time.Hour)

	bus := events.NewEventBus()
	published := &[]string{}
	for _, eventType := range []string{events.EventDraftStarted, events.EventCheckoutSucceeded, events.EventCheckoutFailed} {
		et := eventType
		bus.Subscribe(et, func(e *events.Event) error {
			*published = append(*published, et)
			return nil
		})
	}

	logger := zerolog.Nop()
	return &wizardEnv{
		service:    NewService(drafts, catalog, dispatcher, bus, &logger),
		drafts:     drafts,
		dispatcher: dispatcher,
		published:  published,
	}
}

func futureDate() string {
	return time.Now().AddDate(0, 1, 0).Format("2006-01-02")
}

func TestStartDraftDefaults(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()

	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, "Phi Phi Islands", draft.Tour.Name)
	assert.Equal(t, 1, draft.Adults)
	assert.Equal(t, 0, draft.Children)
	assert.Empty(t, draft.ChildAges)
	assert.Equal(t, models.StepDetails, draft.CurrentStep)
	assert.Equal(t, models.SubmissionIdle, draft.Submission)
	assert.Contains(t, *env.published, events.EventDraftStarted)

	saved, err := env.service.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, saved.ID)
}

func TestStartDraftUnknownTour(t *testing.T) {
	env := newWizardEnv(t)
	_, err := env.service.StartDraft(context.Background(), "tour-404")
	assert.ErrorIs(t, err, ErrTourNotFound)
}

func TestGetDraftNotFound(t *testing.T) {
	env := newWizardEnv(t)
	_, err := env.service.GetDraft(context.Background(), "no-such-draft")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestSetSchedule(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	_, err = env.service.SetSchedule(ctx, draft.ID, "18/09/2026", "08:30")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = env.service.SetSchedule(ctx, draft.ID, "2020-01-01", "08:30")
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = env.service.SetSchedule(ctx, draft.ID, futureDate(), "09:45")
	assert.ErrorIs(t, err, ErrUnknownStartTime)

	updated, err := env.service.SetSchedule(ctx, draft.ID, futureDate(), "08:30")
	require.NoError(t, err)
	assert.Equal(t, futureDate(), updated.Date)
	assert.Equal(t, "08:30", updated.Time)
}

func TestCountersStayInLockstep(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	d, err := env.service.AddChild(ctx, draft.ID)
	require.NoError(t, err)
	d, err = env.service.AddChild(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Children)
	assert.Equal(t, []int{models.DefaultChildAge, models.DefaultChildAge}, d.ChildAges)

	d, err = env.service.RemoveChild(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Children)
	assert.Len(t, d.ChildAges, 1)

	// Removing past zero is a no-op, not an error
	d, err = env.service.RemoveChild(ctx, draft.ID)
	require.NoError(t, err)
	d, err = env.service.RemoveChild(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Children)
	assert.Empty(t, d.ChildAges)
}

func TestAdultsFloorOfOne(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	d, err := env.service.AddAdult(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Adults)

	d, err = env.service.RemoveAdult(ctx, draft.ID)
	require.NoError(t, err)
	d, err = env.service.RemoveAdult(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Adults)
}

func TestUpdateChildAge(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	_, err = env.service.AddChild(ctx, draft.ID)
	require.NoError(t, err)

	d, err := env.service.UpdateChildAge(ctx, draft.ID, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{8}, d.ChildAges)

	_, err = env.service.UpdateChildAge(ctx, draft.ID, 1, 8)
	assert.ErrorIs(t, err, ErrChildIndex)
	_, err = env.service.UpdateChildAge(ctx, draft.ID, -1, 8)
	assert.ErrorIs(t, err, ErrChildIndex)
}

func TestAdvanceBlockedAttachesErrors(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	d, err := env.service.Advance(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrStepBlocked)
	assert.Equal(t, models.StepDetails, d.CurrentStep)
	assert.Equal(t, MsgSelectDate, d.StepError)

	// The blocked state is persisted with the draft
	saved, err := env.service.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, MsgSelectDate, saved.StepError)

	_, err = env.service.SetSchedule(ctx, draft.ID, futureDate(), "08:30")
	require.NoError(t, err)

	d, err = env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepParticipants, d.CurrentStep)
	assert.Empty(t, d.StepError)
}

func TestBackClearsErrorsAndFloors(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	_, err = env.service.Advance(ctx, draft.ID) // leaves StepError set
	assert.ErrorIs(t, err, ErrStepBlocked)

	d, err := env.service.Back(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepDetails, d.CurrentStep) // already at step 1
	assert.Empty(t, d.StepError)
	assert.Nil(t, d.FieldErrors)
}

func TestAdvanceStopsAtPayment(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft := completeDraftThroughContact(t, env)

	d, err := env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, models.StepPayment, d.CurrentStep)

	// No step 5 to advance to
	d, err = env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, d.CurrentStep)
}

func TestSetBillingDerivation(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	_, err = env.service.SetContact(ctx, draft.ID, models.CustomerInfo{
		FirstName:  "Anna",
		LastName:   "Lindqvist",
		Email:      "anna@example.com",
		Phone:      "+46700000001",
		Hotel:      "Karon Sea View",
		RoomNumber: "214",
	})
	require.NoError(t, err)

	d, err := env.service.SetBilling(ctx, draft.ID, models.BillingAddress{
		UseContactInfo: true,
		PostalCode:     "83100",
		Birthday:       "1990-05-04",
	})
	require.NoError(t, err)
	assert.Equal(t, "Karon Sea View Room 214", d.Billing.Street)
	assert.Equal(t, "Phuket", d.Billing.City)
	assert.Equal(t, "Phuket", d.Billing.State)
	assert.Equal(t, "Thailand", d.Billing.Country) // contact country empty
	assert.Equal(t, "+46700000001", d.Billing.Phone)
	assert.Equal(t, "83100", d.Billing.PostalCode)
	assert.Equal(t, "1990-05-04", d.Billing.Birthday)
}

func TestQuote(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	_, err = env.service.AddAdult(ctx, draft.ID)
	require.NoError(t, err)
	for _, age := range []int{3, 6, 10} {
		d, err := env.service.AddChild(ctx, draft.ID)
		require.NoError(t, err)
		_, err = env.service.UpdateChildAge(ctx, draft.ID, len(d.ChildAges)-1, age)
		require.NoError(t, err)
	}

	q, err := env.service.Quote(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 350.0, q.Total)
	assert.Equal(t, 175.0, q.Deposit)
}

func completeDraftThroughContact(t *testing.T, env *wizardEnv) *models.BookingDraft {
	t.Helper()
	ctx := context.Background()

	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	_, err = env.service.SetSchedule(ctx, draft.ID, futureDate(), "08:30")
	require.NoError(t, err)
	_, err = env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)
	_, err = env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)

	_, err = env.service.SetContact(ctx, draft.ID, models.CustomerInfo{
		FirstName: "Anna",
		LastName:  "Lindqvist",
		Email:     "anna@example.com",
		Phone:     "+46700000001",
	})
	require.NoError(t, err)

	draft, err = env.service.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	return draft
}

func completePaymentForm(t *testing.T, env *wizardEnv, id string) {
	t.Helper()
	ctx := context.Background()

	_, err := env.service.SetBilling(ctx, id, models.BillingAddress{
		Street:     "Main St 1",
		City:       "Phuket",
		State:      "Phuket",
		PostalCode: "83100",
		Country:    "Thailand",
		Phone:      "+46700000001",
		Birthday:   "1990-05-04",
	})
	require.NoError(t, err)

	_, err = env.service.SetCard(ctx, id, models.CardInput{
		CardNumber:     "4242424242424242",
		ExpiryDate:     "12/27",
		CVV:            "123",
		CardholderName: "ANNA LINDQVIST",
	})
	require.NoError(t, err)
}

func TestSubmitGates(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft := completeDraftThroughContact(t, env)
	_, err := env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)

	// Incomplete payment form
	_, err = env.service.Submit(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrCannotSubmit)
	assert.Zero(t, env.dispatcher.calls)

	completePaymentForm(t, env, draft.ID)

	// Terms still unchecked
	_, err = env.service.Submit(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrTermsNotAccepted)
	assert.Zero(t, env.dispatcher.calls)
}

func TestSubmitOnlyFromPaymentStep(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()

	draft, err := env.service.StartDraft(ctx, "tour-7")
	require.NoError(t, err)

	// Payment form filled in while the draft still sits on step 1
	completePaymentForm(t, env, draft.ID)
	_, err = env.service.SetAgreement(ctx, draft.ID, true)
	require.NoError(t, err)

	_, err = env.service.Submit(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrStepBlocked)
	assert.Zero(t, env.dispatcher.calls)
}

func TestSubmitInFlightRejected(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft := completeDraftThroughContact(t, env)
	_, err := env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)
	completePaymentForm(t, env, draft.ID)
	_, err = env.service.SetAgreement(ctx, draft.ID, true)
	require.NoError(t, err)

	d, err := env.service.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	d.Submission = models.SubmissionSubmitting
	require.NoError(t, env.drafts.SaveDraft(ctx, d))

	_, err = env.service.Submit(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Zero(t, env.dispatcher.calls)
}

func TestSubmitSuccessDeletesDraft(t *testing.T) {
	env := newWizardEnv(t)
	ctx := context.Background()
	draft := completeDraftThroughContact(t, env)
	_, err := env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)
	completePaymentForm(t, env, draft.ID)
	_, err = env.service.SetAgreement(ctx, draft.ID, true)
	require.NoError(t, err)

	d, err := env.service.Submit(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionSucceeded, d.Submission)
	assert.Equal(t, "42", d.BookingID)
	assert.Equal(t, 1, env.dispatcher.calls)
	assert.Contains(t, *env.published, events.EventCheckoutSucceeded)

	_, err = env.service.GetDraft(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	env := newWizardEnv(t)
	env.dispatcher.fail = true
	env.dispatcher.failMsg = "could not validate the information provided"
	ctx := context.Background()

	draft := completeDraftThroughContact(t, env)
	_, err := env.service.Advance(ctx, draft.ID)
	require.NoError(t, err)
	completePaymentForm(t, env, draft.ID)
	_, err = env.service.SetAgreement(ctx, draft.ID, true)
	require.NoError(t, err)

	d, err := env.service.Submit(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionFailed, d.Submission)
	assert.Equal(t, env.dispatcher.failMsg, d.FailureReason)
	assert.Contains(t, *env.published, events.EventCheckoutFailed)

	// Draft survives for a corrected retry
	kept, err := env.service.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, kept.ID)
}
