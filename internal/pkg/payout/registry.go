package payout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"gorm.io/gorm"
)

// Registry owns the connected account lifecycle per team and keeps the local
// record consistent with the processor's view. Duplicate triggers are made
// safe by idempotency keys, not by locking.
type Registry struct {
	repo      Repository
	processor Client

	returnURLBase string
	now           func() time.Time
}

// NewRegistry creates a registry from an injected repository and processor
// client. returnURLBase is the public base URL the processor redirects back
// to after onboarding.
func NewRegistry(repo Repository, processor Client, returnURLBase string) *Registry {
	return &Registry{
		repo:          repo,
		processor:     processor,
		returnURLBase: strings.TrimRight(returnURLBase, "/"),
		now:           time.Now,
	}
}

// NewRegistryFromDB creates a registry from a GORM DB handle.
func NewRegistryFromDB(db *gorm.DB, processor Client, returnURLBase string) *Registry {
	return NewRegistry(NewRepository(db), processor, returnURLBase)
}

// Start provisions the external account (once, ever) and mints an onboarding
// link. Retried or double-clicked calls reuse the stored account id; the
// account creation key is derived from stable team data, the link key from a
// minute bucket so an expired link can legitimately be replaced later.
func (r *Registry) Start(ctx context.Context, teamID uint) (*models.ConnectedAccount, error) {
	team, err := r.repo.GetTeam(teamID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(team.ContactEmail) == "" {
		return nil, fmt.Errorf("%w: team %d", ErrMissingContact, teamID)
	}

	account, err := r.repo.GetAccountByTeam(teamID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = &models.ConnectedAccount{
			TeamID: teamID,
			Status: models.ConnectedAccountStatusNotStarted,
		}
	}
	if account.Status == models.ConnectedAccountStatusComplete {
		// Onboarding already finished; there is no transition back out of
		// complete, so a late return/refresh trigger is a no-op.
		log.Printf("[payout] start requested for team %d but account %s is already complete, keeping record",
			teamID, account.AccountID)
		return account, nil
	}

	accountID := account.AccountID
	if accountID == "" {
		created, err := r.processor.CreateAccount(ctx, CreateAccountRequest{
			Email:        team.ContactEmail,
			BusinessName: team.Name,
			Country:      "NO",
		}, accountCreationKey(teamID, team.ContactEmail, team.Name))
		if err != nil {
			return nil, err
		}
		accountID = created.ID
	}

	link, err := r.processor.CreateAccountLink(ctx, accountID, CreateAccountLinkRequest{
		ReturnURL:  fmt.Sprintf("%s/settlement/processor/return/%d", r.returnURLBase, teamID),
		RefreshURL: fmt.Sprintf("%s/settlement/processor/refresh/%d", r.returnURLBase, teamID),
	}, accountLinkKey(accountID, r.now()))
	if err != nil {
		// No local mutation on processor failure: the registry must never
		// record a provisioned-but-unconfirmed state.
		return nil, err
	}

	now := r.now()
	account.AccountID = accountID
	account.Status = models.ConnectedAccountStatusPending
	account.OnboardingLink = link.URL
	if link.ExpiresAt > 0 {
		expires := time.Unix(link.ExpiresAt, 0)
		account.OnboardingLinkExpiresAt = &expires
	}
	account.LastCheckedAt = &now

	if err := r.repo.SaveAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// Refresh pulls the processor's current capability flags and recomputes the
// local status. All fields are persisted in a single full-record write; a
// partial write that sets status without the flags would break the cache
// invariant.
func (r *Registry) Refresh(ctx context.Context, teamID uint) (*models.ConnectedAccount, error) {
	account, err := r.repo.GetAccountByTeam(teamID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsProvisioned() {
		return nil, fmt.Errorf("%w: team %d", ErrNotProvisioned, teamID)
	}

	remote, err := r.processor.GetAccount(ctx, account.AccountID)
	if err != nil {
		return nil, err
	}

	wasComplete := account.Status == models.ConnectedAccountStatusComplete
	status := models.DeriveStatus(remote.ChargesEnabled, remote.PayoutsEnabled)
	if wasComplete && status != models.ConnectedAccountStatusComplete {
		// No modeled transition out of complete. The processor has no
		// authoritative signal separating a temporary restriction from a
		// revocation, so this is reported and the local state kept.
		log.Printf("[payout] account %s for team %d regressed at processor (charges=%v payouts=%v), keeping status complete",
			account.AccountID, teamID, remote.ChargesEnabled, remote.PayoutsEnabled)
		status = models.ConnectedAccountStatusComplete
	}

	now := r.now()
	account.Status = status
	account.ChargesEnabled = remote.ChargesEnabled
	account.PayoutsEnabled = remote.PayoutsEnabled
	account.DetailsSubmitted = remote.DetailsSubmitted
	account.LastCheckedAt = &now
	if status == models.ConnectedAccountStatusComplete {
		// The link is single-purpose; once onboarding finished it must not
		// be re-served as if still valid.
		account.OnboardingLink = ""
		account.OnboardingLinkExpiresAt = nil
	}

	if err := r.repo.SaveAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// StatusOf returns the current record for a team, or an unprovisioned shell
// when onboarding has never been started.
func (r *Registry) StatusOf(teamID uint) (*models.ConnectedAccount, error) {
	account, err := r.repo.GetAccountByTeam(teamID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return &models.ConnectedAccount{
			TeamID: teamID,
			Status: models.ConnectedAccountStatusNotStarted,
		}, nil
	}
	return account, nil
}

func accountCreationKey(teamID uint, email, name string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("account:%d:%s:%s", teamID, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(name))))
	return hex.EncodeToString(sum[:])
}

// accountLinkKey buckets to the minute: rapid double-clicks dedupe onto one
// link, while a fresh link can be requested after the previous one expired.
func accountLinkKey(accountID string, at time.Time) string {
	bucket := at.UTC().Format("200601021504")
	sum := sha256.Sum256([]byte("link:" + accountID + ":" + bucket))
	return hex.EncodeToString(sum[:])
}
