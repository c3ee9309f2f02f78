package badgerdb

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const maxRetries = 5

// createDB opens a badgerhold store at dbDir. An empty dbDir opens an
// in-memory store, which the tests rely on.
func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

// repoConfig unpacks the (baseDir, logger) pair shared by all repository
// constructors.
func repoConfig(config ...interface{}) (string, badger.Logger, bool) {
	if len(config) != 2 {
		return "", nil, false
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return "", nil, false
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return "", nil, false
		}
	}
	return baseDir, logger, true
}
