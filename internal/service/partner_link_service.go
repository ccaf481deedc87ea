package service

import (
	"strings"

	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/repository"
)

// PartnerLinkService resolves delivery-partner accounts to partner records
// and repairs broken links. Partner rows may predate the partner's user
// account (admin-created orphans) or carry a stale null user_id; both are
// repair targets, not hard failures.
type PartnerLinkService struct {
	partnerRepo repository.DeliveryPartnerRepository
	userRepo    repository.UserRepository
}

// NewPartnerLinkService creates a link resolver.
func NewPartnerLinkService(partnerRepo repository.DeliveryPartnerRepository, userRepo repository.UserRepository) *PartnerLinkService {
	return &PartnerLinkService{
		partnerRepo: partnerRepo,
		userRepo:    userRepo,
	}
}

// ProfileDefaults carries the profile attributes used when a partner row has
// to be created for a fresh account.
type ProfileDefaults struct {
	Name          string
	Email         string
	Phone         string
	VehicleType   string
	VehicleNumber string
}

// ResolveOrCreate returns the partner record linked to the user, linking or
// creating one as needed. Idempotent: calling it twice for the same user id
// returns the same partner row.
func (s *PartnerLinkService) ResolveOrCreate(userID uint, defaults ProfileDefaults) (*models.DeliveryPartner, error) {
	if userID == 0 {
		return nil, ErrPartnerNotFound
	}

	partner, err := s.partnerRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if partner != nil {
		return partner, nil
	}

	// A row sharing the user's id may exist from a registration flow that
	// wrote the partner record but lost the link write.
	partner, err = s.partnerRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if partner != nil {
		if partner.Linked() {
			if *partner.UserID == userID {
				return partner, nil
			}
			logger.Warnw("partner_link_id_claimed_by_other_user",
				"partner_id", partner.ID,
				"linked_user_id", *partner.UserID,
				"user_id", userID,
			)
			return nil, ErrLinkUnresolved
		}
		claimed, err := s.partnerRepo.ClaimUserID(partner.ID, userID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Lost a claim race; whoever won owns the row now.
			current, err := s.partnerRepo.GetByUserID(userID)
			if err != nil {
				return nil, err
			}
			if current != nil {
				return current, nil
			}
			return nil, ErrLinkUnresolved
		}
		uid := userID
		partner.UserID = &uid
		return partner, nil
	}

	uid := userID
	created := &models.DeliveryPartner{
		ID:            userID,
		UserID:        &uid,
		Name:          strings.TrimSpace(defaults.Name),
		Email:         strings.TrimSpace(strings.ToLower(defaults.Email)),
		Phone:         strings.TrimSpace(defaults.Phone),
		VehicleType:   strings.TrimSpace(defaults.VehicleType),
		VehicleNumber: strings.TrimSpace(defaults.VehicleNumber),
		IsActive:      true,
	}
	if err := s.partnerRepo.Create(created); err != nil {
		// A concurrent resolve may have inserted the row first; the
		// business intent is satisfied either way.
		existing, readErr := s.partnerRepo.GetByUserID(userID)
		if readErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

// FindOrphans returns partner rows with no linked account, for the admin
// report. Read-only.
func (s *PartnerLinkService) FindOrphans() ([]models.DeliveryPartner, error) {
	return s.partnerRepo.FindOrphans()
}

// LinkByContactMatch tries to attach an orphan partner to a delivery-partner
// profile by exact email, then exact phone. It never guesses: no match means
// ErrLinkUnresolved and the orphan stays on the admin report.
func (s *PartnerLinkService) LinkByContactMatch(partnerID uint) (*models.DeliveryPartner, error) {
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}
	if partner.Linked() {
		return partner, nil
	}

	user, err := s.userRepo.FindByRoleAndEmail(constants.RoleDeliveryPartner, strings.TrimSpace(strings.ToLower(partner.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.userRepo.FindByRoleAndPhone(constants.RoleDeliveryPartner, strings.TrimSpace(partner.Phone))
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrLinkUnresolved
	}

	claimed, err := s.partnerRepo.ClaimUserID(partner.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Another writer linked the row first; re-read and report what won.
		current, err := s.partnerRepo.GetByID(partner.ID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Linked() {
			return current, nil
		}
		return nil, ErrLinkUnresolved
	}
	partner.UserID = &user.ID
	logger.Infow("partner_link_repaired",
		"partner_id", partner.ID,
		"user_id", user.ID,
	)
	return partner, nil
}
