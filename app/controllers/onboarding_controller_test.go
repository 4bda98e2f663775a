package controllers

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/payout"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	startCalls   int
	refreshCalls int
	account      *models.ConnectedAccount
	startErr     error
	refreshErr   error
}

func (f *fakeRegistry) Start(ctx context.Context, teamID uint) (*models.ConnectedAccount, error) {
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.account, nil
}

func (f *fakeRegistry) Refresh(ctx context.Context, teamID uint) (*models.ConnectedAccount, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.account, nil
}

func (f *fakeRegistry) StatusOf(teamID uint) (*models.ConnectedAccount, error) {
	return f.account, nil
}

func newCallbackApp(reg *fakeRegistry) *fiber.App {
	InitializeOnboardingController(reg)
	app := fiber.New()
	app.Get("/settlement/processor/return/:teamID", HandleProcessorReturn)
	app.Get("/settlement/processor/refresh/:teamID", HandleProcessorRefresh)
	return app
}

func TestHandleProcessorReturnRefreshesAndRedirects(t *testing.T) {
	reg := &fakeRegistry{account: &models.ConnectedAccount{
		TeamID: 7,
		Status: models.ConnectedAccountStatusComplete,
	}}
	app := newCallbackApp(reg)

	resp, err := app.Test(httptest.NewRequest("GET", "/settlement/processor/return/7", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/teams/7/payout", resp.Header.Get("Location"))
	assert.Equal(t, 1, reg.refreshCalls)
}

func TestHandleProcessorReturnSurvivesRefreshFailure(t *testing.T) {
	reg := &fakeRegistry{refreshErr: &payout.ProcessorError{Code: "api_error", Message: "boom", HTTPStatus: 500}}
	app := newCallbackApp(reg)

	resp, err := app.Test(httptest.NewRequest("GET", "/settlement/processor/return/7", nil))
	require.NoError(t, err)

	// The human still lands on the admin view, flagged as unrefreshed.
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/teams/7/payout?refreshed=false", resp.Header.Get("Location"))
}

func TestHandleProcessorRefreshMintsNewLink(t *testing.T) {
	reg := &fakeRegistry{account: &models.ConnectedAccount{
		TeamID:         7,
		Status:         models.ConnectedAccountStatusPending,
		OnboardingLink: "https://processor.example/onboard/new",
	}}
	app := newCallbackApp(reg)

	resp, err := app.Test(httptest.NewRequest("GET", "/settlement/processor/refresh/7", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://processor.example/onboard/new", resp.Header.Get("Location"))
	assert.Equal(t, 1, reg.startCalls)
}

func TestHandleProcessorRefreshFailureRedirectsToAdmin(t *testing.T) {
	reg := &fakeRegistry{startErr: payout.ErrMissingContact}
	app := newCallbackApp(reg)

	resp, err := app.Test(httptest.NewRequest("GET", "/settlement/processor/refresh/7", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/teams/7/payout", resp.Header.Get("Location"))
}

func TestCallbackRoutesRejectBadTeamID(t *testing.T) {
	reg := &fakeRegistry{}
	app := newCallbackApp(reg)

	resp, err := app.Test(httptest.NewRequest("GET", "/settlement/processor/return/zero", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, reg.refreshCalls)
}
