package repository

import (
	"time"

	"github.com/EivindHaugen/SponsorFlow/app/models"
)

// RecipientRepository defines lookups over the club/team/athlete tree. The
// *BySlug/*AndSlug methods return (nil, nil) on a miss so callers can
// distinguish "not found" from a storage failure; slugs are only unique
// within their parent scope.
type RecipientRepository interface {
	CreateClub(club *models.Club) error
	ClubByID(id uint) (*models.Club, error)
	ClubBySlug(slug string) (*models.Club, error)
	ListClubs() ([]models.Club, error)

	CreateTeam(team *models.Team) error
	TeamByID(id uint) (*models.Team, error)
	TeamByClubAndSlug(clubID uint, slug string) (*models.Team, error)
	ListTeamsByClub(clubID uint) ([]models.Team, error)
	UpdateTeam(team *models.Team) error

	CreateAthlete(athlete *models.Athlete) error
	AthleteByID(id uint) (*models.Athlete, error)
	AthleteByTeamAndSlug(teamID uint, slug string) (*models.Athlete, error)
	ListAthletesByTeam(teamID uint) ([]models.Athlete, error)
}

// OrderRepository defines order persistence for the checkout path.
type OrderRepository interface {
	Create(order *models.SponsorshipOrder, items []models.SponsorshipOrderItem) error
	GetByID(id uint) (*models.SponsorshipOrder, error)
	GetByReference(reference string) (*models.SponsorshipOrder, error)
	Update(order *models.SponsorshipOrder) error
	ListItems(orderID uint) ([]models.SponsorshipOrderItem, error)
}

// SubscriptionRepository defines recurring sponsorship persistence.
type SubscriptionRepository interface {
	Create(sub *models.SponsorshipSubscription) error
	GetByID(id uint) (*models.SponsorshipSubscription, error)
	Update(sub *models.SponsorshipSubscription) error
	ListDueRenewals(before time.Time) ([]models.SponsorshipSubscription, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Recipient    RecipientRepository
	Order        OrderRepository
	Subscription SubscriptionRepository
}
