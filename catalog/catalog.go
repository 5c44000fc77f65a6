// Package catalog is a persistent index of the types defined across many
// metadata images. It lets a Database opened on one image resolve enums that
// live in another.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/andreyvit/clrmeta"
)

const formatVersion = 1

var (
	typesBucket   = []byte("types")
	enumsBucket   = []byte("enums")
	sourcesBucket = []byte("sources")
	metaBucket    = []byte("meta")

	versionKey = []byte("version")
)

var ErrFormat = errors.New("catalog: unsupported format version")

// Catalog maps full type names to the images that define them.
type Catalog struct {
	bdb    *bbolt.DB
	logger *slog.Logger
	now    func() time.Time
}

type Options struct {
	Logger    *slog.Logger
	IsTesting bool
	ReadOnly  bool
	MmapSize  int
}

// Open opens or creates a catalog file.
func Open(path string, opt Options) (*Catalog, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	bopt.ReadOnly = opt.ReadOnly
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024
	} else {
		bopt.InitialMmapSize = 64 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c := &Catalog{
		bdb:    bdb,
		logger: opt.Logger,
		now:    time.Now,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if opt.ReadOnly {
		err = bdb.View(c.checkFormat)
	} else {
		err = bdb.Update(c.prepare)
	}
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) prepare(btx *bbolt.Tx) error {
	for _, name := range [][]byte{typesBucket, enumsBucket, sourcesBucket, metaBucket} {
		if _, err := btx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	meta := btx.Bucket(metaBucket)
	if meta.Get(versionKey) == nil {
		return meta.Put(versionKey, encodeValue(nil, formatVersion))
	}
	return c.checkFormat(btx)
}

func (c *Catalog) checkFormat(btx *bbolt.Tx) error {
	meta := btx.Bucket(metaBucket)
	if meta == nil {
		return fmt.Errorf("%w: not initialized", ErrFormat)
	}
	var ver int
	if err := decodeValue(meta.Get(versionKey), &ver); err != nil {
		return err
	}
	if ver != formatVersion {
		return fmt.Errorf("%w: %d", ErrFormat, ver)
	}
	return nil
}

func (c *Catalog) Close() error {
	return c.bdb.Close()
}

// Bolt exposes the underlying database.
func (c *Catalog) Bolt() *bbolt.DB {
	return c.bdb
}

func (c *Catalog) log(msg string, attrs ...slog.Attr) {
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

// typeKey orders entries by namespace, then name.
func typeKey(namespace, name string) []byte {
	key := make([]byte, 0, len(namespace)+1+len(name))
	key = append(key, namespace...)
	key = append(key, 0)
	return append(key, name...)
}

func namespacePrefix(namespace string) []byte {
	return append([]byte(namespace), 0)
}

func encodeValue(buf []byte, v any) []byte {
	bb := bytes.NewBuffer(buf)
	enc := msgpack.GetEncoder()
	enc.Reset(bb)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode %T using MsgPack: %w", v, err))
	}
	return bb.Bytes()
}

func decodeValue(buf []byte, v any) error {
	var r bytes.Reader
	r.Reset(buf)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	err := dec.Decode(v)
	msgpack.PutDecoder(dec)
	if err != nil {
		return fmt.Errorf("catalog: failed to decode %T: %w", v, err)
	}
	return nil
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

var _ clrmeta.TypeResolver = (*Catalog)(nil)
