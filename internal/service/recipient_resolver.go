package service

import (
	"context"
	"fmt"

	"github.com/JJulme/manito/internal/models"
	"github.com/JJulme/manito/internal/repository"

	"go.uber.org/zap"
)

// RecipientResolver turns user and mission ids into push targets.
// Nothing is cached: every call reads the database.
type RecipientResolver struct {
	profiles repository.ProfileRepository
	missions repository.MissionRepository
	logger   *zap.Logger
}

func NewRecipientResolver(profiles repository.ProfileRepository, missions repository.MissionRepository, logger *zap.Logger) *RecipientResolver {
	return &RecipientResolver{
		profiles: profiles,
		missions: missions,
		logger:   logger.Named("recipient_resolver"),
	}
}

// ResolveToken returns the push token registered for userID.
func (r *RecipientResolver) ResolveToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("empty user id: %w", models.ErrRecipientNotFound)
	}
	return r.profiles.GetPushToken(ctx, userID)
}

// Resolve is ResolveToken packaged as a models.Recipient.
func (r *RecipientResolver) Resolve(ctx context.Context, userID string) (models.Recipient, error) {
	token, err := r.ResolveToken(ctx, userID)
	if err != nil {
		return models.Recipient{}, err
	}
	return models.Recipient{UserID: userID, PushToken: token}, nil
}

// ResolveCounterpart returns the other participant of missionID as seen from actorID.
func (r *RecipientResolver) ResolveCounterpart(ctx context.Context, missionID, actorID string) (string, error) {
	participants, err := r.missions.GetParticipants(ctx, missionID)
	if err != nil {
		return "", err
	}
	counterpart, err := Counterpart(participants, actorID)
	if err != nil {
		r.logger.Warn("Actor is not a mission participant",
			zap.String("mission_id", missionID),
			zap.String("actor_id", actorID),
		)
		return "", fmt.Errorf("mission %s: %w", missionID, err)
	}
	return counterpart, nil
}

// Counterpart picks the assignee when actorID is the creator and the creator when it is the assignee.
func Counterpart(p *models.MissionParticipants, actorID string) (string, error) {
	if p == nil || actorID == "" {
		return "", models.ErrAmbiguousParticipant
	}
	switch actorID {
	case p.CreatorID:
		if p.AssigneeID == "" {
			return "", fmt.Errorf("mission has no assignee: %w", models.ErrRecipientNotFound)
		}
		return p.AssigneeID, nil
	case p.AssigneeID:
		return p.CreatorID, nil
	}
	return "", models.ErrAmbiguousParticipant
}

// DisplayName returns the nickname shown to the recipient for userID.
func (r *RecipientResolver) DisplayName(ctx context.Context, userID string) (string, error) {
	return r.profiles.GetNickname(ctx, userID)
}
