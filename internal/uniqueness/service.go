package uniqueness

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/db"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

// TravelWindowDays is how long a container lock blocks reuse. A reefer round
// trip to the destination port and back never exceeds this.
const TravelWindowDays = 35

// ErrStorageRace signals that a concurrent claim won the unique index between
// validation and insert. Callers re-validate once and report the conflicts.
var ErrStorageRace = stdErrors.New("uniqueness ledger storage race")

// Candidate is one (type, value) pair a record wants to claim.
type Candidate struct {
	Type  enums.CodeType
	Value string
}

// Conflict describes why a candidate cannot be claimed.
type Conflict struct {
	Type     enums.CodeType `json:"type"`
	Value    string         `json:"value"`
	OwnerRef string         `json:"owner_ref"`
	Reason   string         `json:"reason"`
}

const (
	ReasonCodeInUse       = "code already in use"
	ReasonContainerInTrip = "container inside travel window"
)

// ClaimInput captures everything a ledger claim needs.
type ClaimInput struct {
	OwnerRef   string
	Origin     string
	Actor      string
	Lock       bool
	Candidates []Candidate
}

// Service is the uniqueness ledger. Validate and Claim run on the caller's
// transaction handle so record mutations stay atomic.
type Service interface {
	Validate(ctx context.Context, tx *gorm.DB, candidates []Candidate, excludeOwner string) ([]Conflict, error)
	Claim(ctx context.Context, tx *gorm.DB, input ClaimInput) error
	Release(ctx context.Context, tx *gorm.DB, ownerRef string, types []enums.CodeType) error
	EntriesByOwner(ctx context.Context, ownerRef string) ([]models.LedgerEntry, error)
}

type service struct {
	repo Repository
}

// NewService wires the ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("uniqueness repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Validate(ctx context.Context, tx *gorm.DB, candidates []Candidate, excludeOwner string) ([]Conflict, error) {
	repo := s.repo.WithTx(tx)
	grouped := groupCandidates(candidates)
	cutoff := time.Now().AddDate(0, 0, -TravelWindowDays)

	var conflicts []Conflict
	for _, codeType := range orderedTypes(grouped) {
		values := grouped[codeType]
		entries, err := repo.FindByTypeValues(ctx, codeType, values, excludeOwner)
		if err != nil {
			return nil, fmt.Errorf("querying ledger for %s: %w", codeType, err)
		}
		blocking := map[string]models.LedgerEntry{}
		for _, entry := range entries {
			if codeType.Transient() && !lockActive(entry, cutoff) {
				continue
			}
			if _, seen := blocking[entry.Value]; !seen {
				blocking[entry.Value] = entry
			}
		}
		for _, value := range values {
			entry, blocked := blocking[value]
			if !blocked {
				continue
			}
			reason := ReasonCodeInUse
			if codeType.Transient() {
				reason = ReasonContainerInTrip
			}
			conflicts = append(conflicts, Conflict{
				Type:     codeType,
				Value:    value,
				OwnerRef: entry.OwnerRef,
				Reason:   reason,
			})
		}
	}
	return conflicts, nil
}

// Claim replaces the owner's entries with the candidate set. Previous claims
// by the same owner are deleted first, so edits re-derive from scratch
// instead of patching. Expired container locks on the wanted values are
// released inside the same transaction; otherwise the partial unique index
// would reject a value the window rule already treats as free.
func (s *service) Claim(ctx context.Context, tx *gorm.DB, input ClaimInput) error {
	if input.OwnerRef == "" {
		return fmt.Errorf("owner ref is required")
	}
	repo := s.repo.WithTx(tx)
	now := time.Now()
	cutoff := now.AddDate(0, 0, -TravelWindowDays)

	if err := repo.DeleteByOwner(ctx, input.OwnerRef, nil); err != nil {
		return fmt.Errorf("clearing previous claims: %w", err)
	}

	grouped := groupCandidates(input.Candidates)
	for _, codeType := range orderedTypes(grouped) {
		if !codeType.Transient() {
			continue
		}
		if err := repo.ReleaseExpiredLocks(ctx, codeType, grouped[codeType], cutoff, now); err != nil {
			return fmt.Errorf("releasing expired locks: %w", err)
		}
	}

	var entries []*models.LedgerEntry
	for _, codeType := range orderedTypes(grouped) {
		for _, value := range grouped[codeType] {
			entry := &models.LedgerEntry{
				ID:       uuid.New(),
				Type:     codeType,
				Value:    value,
				OwnerRef: input.OwnerRef,
				Origin:   input.Origin,
				SetBy:    input.Actor,
			}
			if codeType.Transient() && input.Lock {
				lockedSince := now
				entry.Locked = true
				entry.LockedSince = &lockedSince
			}
			entries = append(entries, entry)
		}
	}

	if err := repo.CreateBatch(ctx, entries); err != nil {
		if db.IsUniqueViolation(err, "") {
			return fmt.Errorf("%w: %v", ErrStorageRace, err)
		}
		return fmt.Errorf("claiming ledger entries: %w", err)
	}
	return nil
}

func (s *service) Release(ctx context.Context, tx *gorm.DB, ownerRef string, types []enums.CodeType) error {
	if ownerRef == "" {
		return fmt.Errorf("owner ref is required")
	}
	return s.repo.WithTx(tx).ReleaseByOwner(ctx, ownerRef, types, time.Now())
}

func (s *service) EntriesByOwner(ctx context.Context, ownerRef string) ([]models.LedgerEntry, error) {
	return s.repo.ListByOwner(ctx, ownerRef)
}

func lockActive(entry models.LedgerEntry, cutoff time.Time) bool {
	if !entry.Locked || entry.LockedSince == nil {
		return false
	}
	return entry.LockedSince.After(cutoff)
}

// groupCandidates normalizes, drops blanks/wildcards and dedupes per type,
// preserving input order within each type.
func groupCandidates(candidates []Candidate) map[enums.CodeType][]string {
	grouped := map[enums.CodeType][]string{}
	seen := map[Candidate]bool{}
	for _, candidate := range candidates {
		value := Normalize(candidate.Value)
		if value == "" || !candidate.Type.IsValid() {
			continue
		}
		key := Candidate{Type: candidate.Type, Value: value}
		if seen[key] {
			continue
		}
		seen[key] = true
		grouped[candidate.Type] = append(grouped[candidate.Type], value)
	}
	return grouped
}

// orderedTypes walks the grouped map in the enum's declared order so queries
// and inserts are deterministic.
func orderedTypes(grouped map[enums.CodeType][]string) []enums.CodeType {
	ordered := make([]enums.CodeType, 0, len(grouped))
	for _, codeType := range []enums.CodeType{
		enums.CodeTypeOrder,
		enums.CodeTypeBooking,
		enums.CodeTypeContainer,
		enums.CodeTypeThermograph,
		enums.CodeTypeSealBeta,
		enums.CodeTypeSealCustoms,
		enums.CodeTypeSealOperator,
		enums.CodeTypeSenasaLine,
	} {
		if _, ok := grouped[codeType]; ok {
			ordered = append(ordered, codeType)
		}
	}
	return ordered
}
