package db

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/morphcodes/morphd/internal/core/ports"
	badgerdb "github.com/morphcodes/morphd/internal/infrastructure/db/badger"
	sqlitedb "github.com/morphcodes/morphd/internal/infrastructure/db/sqlite"
)

//go:embed sqlite/migration/*
var migrations embed.FS

var (
	chainStoreTypes = map[string]func(...interface{}) (domain.ChainRepository, error){
		"badger": badgerdb.NewChainRepository,
		"sqlite": sqlitedb.NewChainRepository,
	}
	tokenStoreTypes = map[string]func(...interface{}) (domain.TokenRepository, error){
		"badger": badgerdb.NewTokenRepository,
		"sqlite": sqlitedb.NewTokenRepository,
	}
	scanStoreTypes = map[string]func(...interface{}) (domain.ScanRepository, error){
		"badger": badgerdb.NewScanRepository,
		"sqlite": sqlitedb.NewScanRepository,
	}
	organizationStoreTypes = map[string]func(...interface{}) (domain.OrganizationRepository, error){
		"badger": badgerdb.NewOrganizationRepository,
		"sqlite": sqlitedb.NewOrganizationRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	chainStore        domain.ChainRepository
	tokenStore        domain.TokenRepository
	scanStore         domain.ScanRepository
	organizationStore domain.OrganizationRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	chainStoreFactory, ok := chainStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	tokenStoreFactory, ok := tokenStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	scanStoreFactory, ok := scanStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	organizationStoreFactory, ok := organizationStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	var chainStore domain.ChainRepository
	var tokenStore domain.TokenRepository
	var scanStore domain.ScanRepository
	var organizationStore domain.OrganizationRepository
	var err error

	switch config.DataStoreType {
	case "badger":
		chainStore, err = chainStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open chain store: %s", err)
		}
		tokenStore, err = tokenStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open token store: %s", err)
		}
		scanStore, err = scanStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open scan store: %s", err)
		}
		organizationStore, err = organizationStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open organization store: %s", err)
		}

	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}

		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		dbFile := filepath.Join(baseDir, sqliteDbFile)
		db, err := sqlitedb.OpenDb(dbFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init driver: %s", err)
		}

		source, err := iofs.New(migrations, "sqlite/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed migrations: %s", err)
		}

		m, err := migrate.NewWithInstance("iofs", source, "morphdb", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migration instance: %s", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run migrations: %s", err)
		}

		chainStore, err = chainStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open chain store: %s", err)
		}
		tokenStore, err = tokenStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open token store: %s", err)
		}
		scanStore, err = scanStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open scan store: %s", err)
		}
		organizationStore, err = organizationStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open organization store: %s", err)
		}
	}

	return &service{
		chainStore:        chainStore,
		tokenStore:        tokenStore,
		scanStore:         scanStore,
		organizationStore: organizationStore,
	}, nil
}

func (s *service) Chains() domain.ChainRepository {
	return s.chainStore
}

func (s *service) Tokens() domain.TokenRepository {
	return s.tokenStore
}

func (s *service) Scans() domain.ScanRepository {
	return s.scanStore
}

func (s *service) Organizations() domain.OrganizationRepository {
	return s.organizationStore
}

func (s *service) Close() {
	s.chainStore.Close()
	s.tokenStore.Close()
	s.scanStore.Close()
	s.organizationStore.Close()
}
