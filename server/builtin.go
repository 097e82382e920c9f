package server

import (
	"github.com/starkedge/mempool/storage"
	"github.com/starkedge/mempool/storage/boltdb"
	"github.com/starkedge/mempool/storage/leveldb"
	"github.com/starkedge/mempool/storage/memory"
)

type StorageType string

const (
	LevelDBStorage StorageType = "leveldb"
	BoltDBStorage  StorageType = "boltdb"
	MemoryStorage  StorageType = "memory"
)

var storageBackends = map[StorageType]storage.Factory{
	LevelDBStorage: leveldb.Factory,
	BoltDBStorage:  boltdb.Factory,
	MemoryStorage:  memory.Factory,
}

func StorageSupported(value string) bool {
	_, ok := storageBackends[StorageType(value)]

	return ok
}

type StateType string

const (
	MemoryState  StateType = "memory"
	JSONRPCState StateType = "jsonrpc"
)

func StateSupported(value string) bool {
	switch StateType(value) {
	case MemoryState, JSONRPCState:
		return true
	default:
		return false
	}
}
