package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/EivindHaugen/SponsorFlow/app/models"
)

// ErrNotFound is returned when a slug path does not resolve to a recipient.
var ErrNotFound = errors.New("hierarchy: recipient not found")

// ErrUnresolvedHierarchy is returned when a recipient's parent chain is
// broken (parent deleted). Derived operations fail soft with this error
// instead of crashing; settlement math is unaffected.
var ErrUnresolvedHierarchy = errors.New("hierarchy: parent chain unresolved")

// Directory is the recipient lookup surface the resolver needs. The GORM
// recipient repository under app/repository satisfies it.
type Directory interface {
	ClubBySlug(slug string) (*models.Club, error)
	ClubByID(id uint) (*models.Club, error)
	TeamByClubAndSlug(clubID uint, slug string) (*models.Team, error)
	TeamByID(id uint) (*models.Team, error)
	AthleteByTeamAndSlug(teamID uint, slug string) (*models.Athlete, error)
	AthleteByID(id uint) (*models.Athlete, error)
}

// Resolved is the outcome of a path resolution. Team and Athlete are nil for
// shorter paths.
type Resolved struct {
	Type    string
	Club    *models.Club
	Team    *models.Team
	Athlete *models.Athlete
}

// RecipientID returns the id of the deepest resolved node.
func (r *Resolved) RecipientID() uint {
	switch r.Type {
	case models.RecipientTypeAthlete:
		return r.Athlete.ID
	case models.RecipientTypeTeam:
		return r.Team.ID
	default:
		return r.Club.ID
	}
}

// RecipientName returns the display name of the deepest resolved node.
func (r *Resolved) RecipientName() string {
	switch r.Type {
	case models.RecipientTypeAthlete:
		return r.Athlete.Name
	case models.RecipientTypeTeam:
		return r.Team.Name
	default:
		return r.Club.Name
	}
}

// AncestorNames lists the display names above the resolved node, outermost
// first.
func (r *Resolved) AncestorNames() []string {
	switch r.Type {
	case models.RecipientTypeAthlete:
		return []string{r.Club.Name, r.Team.Name}
	case models.RecipientTypeTeam:
		return []string{r.Club.Name}
	default:
		return nil
	}
}

// Resolver resolves slug paths against the recipient tree. Slugs are only
// unique within their parent's scope, so every lookup is parent-scoped; a
// correct slug under the wrong parent is a miss, never a wrong hit.
type Resolver struct {
	dir   Directory
	cache Cache
}

// NewResolver creates a resolver. Pass NewNoopCache() to disable caching.
func NewResolver(dir Directory, cache Cache) *Resolver {
	if cache == nil {
		cache = NewNoopCache()
	}
	return &Resolver{dir: dir, cache: cache}
}

// ResolvePath resolves club/team/athlete slug segments to the deepest named
// recipient. teamSlug and athleteSlug may be empty for shorter paths.
func (r *Resolver) ResolvePath(ctx context.Context, clubSlug, teamSlug, athleteSlug string) (*Resolved, error) {
	if clubSlug == "" {
		return nil, ErrNotFound
	}

	key := pathKey(clubSlug, teamSlug, athleteSlug)
	if ids, ok := r.cache.Get(ctx, key); ok {
		if resolved, err := r.resolveIDs(ids); err == nil {
			return resolved, nil
		}
		// Stale entry (node renamed or deleted since cached).
		r.cache.Delete(ctx, key)
	}

	club, err := r.dir.ClubBySlug(clubSlug)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, fmt.Errorf("%w: club %q", ErrNotFound, clubSlug)
	}

	resolved := &Resolved{Type: models.RecipientTypeClub, Club: club}
	if teamSlug != "" {
		team, err := r.dir.TeamByClubAndSlug(club.ID, teamSlug)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, fmt.Errorf("%w: team %q in club %q", ErrNotFound, teamSlug, clubSlug)
		}
		resolved.Type = models.RecipientTypeTeam
		resolved.Team = team

		if athleteSlug != "" {
			athlete, err := r.dir.AthleteByTeamAndSlug(team.ID, athleteSlug)
			if err != nil {
				return nil, err
			}
			if athlete == nil {
				return nil, fmt.Errorf("%w: athlete %q in team %q", ErrNotFound, athleteSlug, teamSlug)
			}
			resolved.Type = models.RecipientTypeAthlete
			resolved.Athlete = athlete
		}
	}

	r.cache.Set(ctx, key, resolvedIDs{
		ClubID:    club.ID,
		TeamID:    teamID(resolved),
		AthleteID: athleteID(resolved),
	})
	return resolved, nil
}

// ResolveAthleteByID rebuilds the full chain for an athlete id, walking
// child to parent. A missing parent yields ErrUnresolvedHierarchy.
func (r *Resolver) ResolveAthleteByID(id uint) (*Resolved, error) {
	athlete, err := r.dir.AthleteByID(id)
	if err != nil {
		return nil, err
	}
	if athlete == nil {
		return nil, fmt.Errorf("%w: athlete %d", ErrNotFound, id)
	}
	team, err := r.dir.TeamByID(athlete.TeamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, fmt.Errorf("%w: athlete %d has no team %d", ErrUnresolvedHierarchy, id, athlete.TeamID)
	}
	club, err := r.dir.ClubByID(team.ClubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, fmt.Errorf("%w: team %d has no club %d", ErrUnresolvedHierarchy, team.ID, team.ClubID)
	}
	return &Resolved{Type: models.RecipientTypeAthlete, Club: club, Team: team, Athlete: athlete}, nil
}

// ResolveTeamByID rebuilds the chain for a team id.
func (r *Resolver) ResolveTeamByID(id uint) (*Resolved, error) {
	team, err := r.dir.TeamByID(id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, id)
	}
	club, err := r.dir.ClubByID(team.ClubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, fmt.Errorf("%w: team %d has no club %d", ErrUnresolvedHierarchy, id, team.ClubID)
	}
	return &Resolved{Type: models.RecipientTypeTeam, Club: club, Team: team}, nil
}

// Permalink builds the canonical sponsor path for a resolved recipient.
func (r *Resolved) Permalink() string {
	switch r.Type {
	case models.RecipientTypeAthlete:
		return fmt.Sprintf("/sponsor/%s/%s/%s", r.Club.Slug, r.Team.Slug, r.Athlete.Slug)
	case models.RecipientTypeTeam:
		return fmt.Sprintf("/sponsor/%s/%s", r.Club.Slug, r.Team.Slug)
	default:
		return fmt.Sprintf("/sponsor/%s", r.Club.Slug)
	}
}

// Invalidate drops the cached resolution for a path, for use by slug change
// hooks.
func (r *Resolver) Invalidate(ctx context.Context, clubSlug, teamSlug, athleteSlug string) {
	r.cache.Delete(ctx, pathKey(clubSlug, teamSlug, athleteSlug))
}

func (r *Resolver) resolveIDs(ids resolvedIDs) (*Resolved, error) {
	club, err := r.dir.ClubByID(ids.ClubID)
	if err != nil || club == nil {
		return nil, ErrNotFound
	}
	resolved := &Resolved{Type: models.RecipientTypeClub, Club: club}
	if ids.TeamID != 0 {
		team, err := r.dir.TeamByID(ids.TeamID)
		if err != nil || team == nil {
			return nil, ErrNotFound
		}
		resolved.Type = models.RecipientTypeTeam
		resolved.Team = team
	}
	if ids.AthleteID != 0 {
		athlete, err := r.dir.AthleteByID(ids.AthleteID)
		if err != nil || athlete == nil {
			return nil, ErrNotFound
		}
		resolved.Type = models.RecipientTypeAthlete
		resolved.Athlete = athlete
	}
	return resolved, nil
}

func pathKey(clubSlug, teamSlug, athleteSlug string) string {
	return fmt.Sprintf("hierarchy:path:%s/%s/%s", clubSlug, teamSlug, athleteSlug)
}

func teamID(r *Resolved) uint {
	if r.Team == nil {
		return 0
	}
	return r.Team.ID
}

func athleteID(r *Resolved) uint {
	if r.Athlete == nil {
		return 0
	}
	return r.Athlete.ID
}
