package application

import (
	"context"
	"fmt"

	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/morphcodes/morphd/internal/core/ports"
	"github.com/morphcodes/morphd/pkg/hashchain"
	log "github.com/sirupsen/logrus"
)

var ErrChainQuotaExceeded = fmt.Errorf("chain quota exceeded for plan")

type Service interface {
	Start() error
	Stop()
	CreateChain(
		ctx context.Context, orgID, createdBy, name, description string, length int,
	) (*domain.Chain, error)
	GetChain(ctx context.Context, orgID, chainID string) (*domain.Chain, error)
	ListChains(ctx context.Context, orgID string) ([]domain.Chain, error)
	GetCurrentToken(ctx context.Context, chainID string) (*CurrentToken, error)
	Scan(ctx context.Context, chainID, claimedValue string, meta ScanMeta) (*Outcome, error)
	Deactivate(ctx context.Context, orgID, chainID string) error
	GetScans(ctx context.Context, orgID, chainID string, limit int) ([]domain.ScanAttempt, error)
	GetStats(ctx context.Context, orgID, chainID string) (*ChainStats, error)
}

type service struct {
	repoManager ports.RepoManager
	liveStore   ports.LiveStore
	scheduler   ports.SchedulerService
	webhooks    *webhookDispatcher
	baseURL     string
}

func NewService(
	repoManager ports.RepoManager, liveStore ports.LiveStore,
	schedulerSvc ports.SchedulerService, webhookSender ports.WebhookSender, baseURL string,
) Service {
	var dispatcher *webhookDispatcher
	if webhookSender != nil {
		dispatcher = newWebhookDispatcher(webhookSender, schedulerSvc)
	}
	return &service{
		repoManager: repoManager,
		liveStore:   liveStore,
		scheduler:   schedulerSvc,
		webhooks:    dispatcher,
		baseURL:     baseURL,
	}
}

func (s *service) Start() error {
	if s.scheduler != nil {
		s.scheduler.Start()
	}
	return nil
}

func (s *service) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// CreateChain derives a full hash chain from a fresh seed and persists the
// chain record together with all of its tokens. The chain starts at cursor
// length-1, its last link being the first code handed out.
func (s *service) CreateChain(
	ctx context.Context, orgID, createdBy, name, description string, length int,
) (*domain.Chain, error) {
	if err := s.checkChainQuota(ctx, orgID); err != nil {
		return nil, err
	}

	seed, err := hashchain.NewSeed()
	if err != nil {
		return nil, err
	}
	values, err := hashchain.Generate(seed, length)
	if err != nil {
		return nil, err
	}

	chain, err := domain.NewChain(name, description, seed, length, orgID, createdBy)
	if err != nil {
		return nil, err
	}

	tokens := make([]domain.Token, 0, length)
	for position, value := range values {
		tokens = append(tokens, domain.Token{
			ChainID:  chain.ID,
			Position: position,
			Value:    value,
		})
	}

	if err := s.repoManager.Chains().AddChain(ctx, *chain); err != nil {
		return nil, fmt.Errorf("failed to persist chain: %w", err)
	}
	if err := s.repoManager.Tokens().AddTokens(ctx, tokens); err != nil {
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}

	log.WithFields(log.Fields{
		"chain": chain.ID, "org": orgID, "length": length,
	}).Debug("created chain")
	return chain, nil
}

func (s *service) GetChain(ctx context.Context, orgID, chainID string) (*domain.Chain, error) {
	chain, err := s.repoManager.Chains().GetChain(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}
	if chain == nil || (orgID != "" && chain.OrgID != orgID) {
		return nil, domain.ErrChainNotFound
	}
	return chain, nil
}

func (s *service) ListChains(ctx context.Context, orgID string) ([]domain.Chain, error) {
	return s.repoManager.Chains().GetChainsByOrg(ctx, orgID)
}

func (s *service) GetCurrentToken(ctx context.Context, chainID string) (*CurrentToken, error) {
	chain, err := s.repoManager.Chains().GetChain(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}
	if chain == nil {
		return nil, domain.ErrChainNotFound
	}
	if chain.Exhausted() {
		return nil, domain.ErrChainExhausted
	}
	if !chain.Active {
		return nil, domain.ErrChainInactive
	}

	token, err := s.repoManager.Tokens().GetToken(ctx, chainID, chain.Cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("token at position %d missing for chain %s", chain.Cursor, chainID)
	}

	payload, err := hashchain.EncodePayload(chainID, token.Value, s.baseURL)
	if err != nil {
		return nil, err
	}

	return &CurrentToken{
		ChainID:   chainID,
		Position:  token.Position,
		Value:     token.Value,
		Payload:   payload,
		Remaining: chain.Cursor + 1,
	}, nil
}

// Scan runs the acceptance state machine for one claimed value. The checks
// run in a fixed order, each short-circuiting with its reason: chain exists,
// chain active, value in chain, value at the current cursor, value not yet
// consumed. Steps after the chain lookup execute under the chain's exclusive
// lock so that two concurrent submissions of the same value can never both
// be accepted. Every call appends exactly one audit record.
func (s *service) Scan(
	ctx context.Context, chainID, claimedValue string, meta ScanMeta,
) (*Outcome, error) {
	release, err := s.liveStore.ChainLocks().Lock(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire chain lock: %w", err)
	}
	defer release()

	chain, err := s.repoManager.Chains().GetChain(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}
	if chain == nil {
		return s.reject(
			ctx, chainID, claimedValue, domain.UnresolvedPosition,
			domain.ReasonChainNotFound, meta,
		), nil
	}
	if !chain.Active {
		return s.reject(
			ctx, chainID, claimedValue, domain.UnresolvedPosition,
			domain.ReasonChainInactive, meta,
		), nil
	}

	token, err := s.repoManager.Tokens().GetTokenByValue(ctx, chainID, claimedValue)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return s.reject(
			ctx, chainID, claimedValue, domain.UnresolvedPosition,
			domain.ReasonValueNotInChain, meta,
		), nil
	}
	// Order matters: a token whose turn has passed (or not yet arrived) is
	// rejected as out-of-order before its consumed flag is even looked at.
	if token.Position != chain.Cursor {
		return s.reject(
			ctx, chainID, claimedValue, token.Position, domain.ReasonValueNotCurrent, meta,
		), nil
	}
	if token.Consumed {
		return s.reject(
			ctx, chainID, claimedValue, token.Position, domain.ReasonAlreadyConsumed, meta,
		), nil
	}

	if err := s.repoManager.Tokens().MarkConsumed(ctx, chainID, token.Position); err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	var updated domain.Chain
	if err := s.repoManager.Chains().UpdateChain(
		ctx, chainID, func(c *domain.Chain) (*domain.Chain, error) {
			if err := c.Advance(); err != nil {
				return nil, err
			}
			updated = *c
			return c, nil
		},
	); err != nil {
		return nil, fmt.Errorf("failed to advance chain: %w", err)
	}

	outcome := &Outcome{
		Accepted:         true,
		ConsumedPosition: token.Position,
		NewCursor:        updated.Cursor,
		ChainExhausted:   updated.Exhausted(),
	}
	s.recordScan(ctx, domain.NewScanAttempt(
		chainID, claimedValue, token.Position, domain.ReasonNone, meta.IP, meta.UserAgent,
	))
	s.notifyAccepted(ctx, &updated, claimedValue, *outcome)
	return outcome, nil
}

func (s *service) Deactivate(ctx context.Context, orgID, chainID string) error {
	release, err := s.liveStore.ChainLocks().Lock(ctx, chainID)
	if err != nil {
		return fmt.Errorf("failed to acquire chain lock: %w", err)
	}
	defer release()

	if _, err := s.GetChain(ctx, orgID, chainID); err != nil {
		return err
	}
	return s.repoManager.Chains().UpdateChain(
		ctx, chainID, func(c *domain.Chain) (*domain.Chain, error) {
			c.Deactivate()
			return c, nil
		},
	)
}

func (s *service) GetScans(
	ctx context.Context, orgID, chainID string, limit int,
) ([]domain.ScanAttempt, error) {
	if _, err := s.GetChain(ctx, orgID, chainID); err != nil {
		return nil, err
	}
	return s.repoManager.Scans().GetScansByChain(ctx, chainID, limit)
}

func (s *service) GetStats(ctx context.Context, orgID, chainID string) (*ChainStats, error) {
	chain, err := s.GetChain(ctx, orgID, chainID)
	if err != nil {
		return nil, err
	}
	stats, err := s.repoManager.Scans().GetStats(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan stats: %w", err)
	}

	remaining := chain.Cursor + 1
	scanned := chain.Length - remaining
	return &ChainStats{
		Length:          chain.Length,
		Cursor:          chain.Cursor,
		Remaining:       remaining,
		Scanned:         scanned,
		PercentComplete: float64(scanned) / float64(chain.Length) * 100,
		TotalScans:      stats.Total,
		AcceptedScans:   stats.Accepted,
		RejectedScans:   stats.Rejected,
	}, nil
}

func (s *service) checkChainQuota(ctx context.Context, orgID string) error {
	org, err := s.repoManager.Organizations().GetOrganization(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil {
		return nil
	}
	limits := org.Plan.Limits()
	if limits.MaxChains < 0 {
		return nil
	}
	chains, err := s.repoManager.Chains().GetChainsByOrg(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to list chains: %w", err)
	}
	if len(chains) >= limits.MaxChains {
		return ErrChainQuotaExceeded
	}
	return nil
}

func (s *service) reject(
	ctx context.Context, chainID, value string, position int,
	reason domain.RejectionReason, meta ScanMeta,
) *Outcome {
	s.recordScan(ctx, domain.NewScanAttempt(
		chainID, value, position, reason, meta.IP, meta.UserAgent,
	))
	return &Outcome{Accepted: false, Reason: reason}
}

// recordScan appends to the audit trail. Audit failures are logged, not
// surfaced: the validation outcome stands on chain and token state alone.
func (s *service) recordScan(ctx context.Context, scan domain.ScanAttempt) {
	if err := s.repoManager.Scans().AddScan(ctx, scan); err != nil {
		log.WithError(err).WithField("chain", scan.ChainID).Warn("failed to record scan attempt")
	}
}

func (s *service) notifyAccepted(
	ctx context.Context, chain *domain.Chain, value string, outcome Outcome,
) {
	if s.webhooks == nil {
		return
	}
	org, err := s.repoManager.Organizations().GetOrganization(ctx, chain.OrgID)
	if err != nil {
		log.WithError(err).WithField("org", chain.OrgID).Warn("failed to load org for webhook")
		return
	}
	if org == nil || org.WebhookURL == "" {
		return
	}
	s.webhooks.dispatch(org.WebhookURL, org.WebhookSecret, ports.WebhookEvent{
		Event:          "scan.accepted",
		OrgID:          org.ID,
		ChainID:        chain.ID,
		ChainName:      chain.Name,
		Value:          value,
		Position:       outcome.ConsumedPosition,
		Remaining:      outcome.NewCursor + 1,
		ChainExhausted: outcome.ChainExhausted,
		Timestamp:      chain.UpdatedAt,
	})
}
