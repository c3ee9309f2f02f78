package ports

import "github.com/morphcodes/morphd/internal/core/domain"

type RepoManager interface {
	Chains() domain.ChainRepository
	Tokens() domain.TokenRepository
	Scans() domain.ScanRepository
	Organizations() domain.OrganizationRepository
	Close()
}
