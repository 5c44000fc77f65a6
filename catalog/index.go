package catalog

import (
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/andreyvit/clrmeta"
)

// Index records every top-level type defined by db under source, replacing
// whatever source contributed previously. Types with the same full name
// from another source are overwritten; the last indexed image wins.
func (c *Catalog) Index(db *clrmeta.Database, source string) (*Source, error) {
	start := time.Now()
	mod, err := db.Module()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	modName, err := mod.Name()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	mvid, err := mod.Mvid()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	src := &Source{
		Path:      source,
		Mvid:      mvid,
		Module:    modName,
		Version:   db.Version(),
		IndexedAt: c.now().UTC(),
	}
	var entries []*TypeEntry
	enums := make(map[string]*enumRecord)
	for td := range db.TypeDefs().All() {
		e, rec, err := describe(db, td, source, mvid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if e == nil {
			continue
		}
		entries = append(entries, e)
		src.TypeNames = append(src.TypeNames, string(typeKey(e.Namespace, e.Name)))
		if rec != nil {
			enums[string(typeKey(e.Namespace, e.Name))] = rec
		}
	}
	src.Types = len(entries)
	src.Enums = len(enums)

	err = c.bdb.Update(func(btx *bbolt.Tx) error {
		types := btx.Bucket(typesBucket)
		enumsB := btx.Bucket(enumsBucket)
		sources := btx.Bucket(sourcesBucket)

		if err := dropSource(btx, source); err != nil {
			return err
		}
		for _, e := range entries {
			key := typeKey(e.Namespace, e.Name)
			if err := types.Put(key, encodeValue(nil, e)); err != nil {
				return err
			}
			if rec := enums[string(key)]; rec != nil {
				if err := enumsB.Put(key, encodeValue(nil, rec)); err != nil {
					return err
				}
			} else if err := enumsB.Delete(key); err != nil {
				return err
			}
		}
		return sources.Put([]byte(source), encodeValue(nil, src))
	})
	if err != nil {
		return nil, err
	}
	c.log("catalog: indexed",
		slog.String("source", source),
		slog.String("module", modName),
		slog.Int("types", src.Types),
		slog.Int("enums", src.Enums),
		slog.Duration("took", time.Since(start)))
	return src, nil
}

// describe returns nil for types that are not addressable by full name.
func describe(db *clrmeta.Database, td clrmeta.TypeDef, source string, mvid clrmeta.GUID) (*TypeEntry, *enumRecord, error) {
	flags := td.Flags()
	if flags.IsNested() {
		return nil, nil, nil
	}
	ns, name, err := td.Name()
	if err != nil {
		return nil, nil, err
	}
	if ns == "" && name == "<Module>" {
		return nil, nil, nil
	}
	e := &TypeEntry{
		Namespace: ns,
		Name:      name,
		Source:    source,
		Mvid:      mvid,
		Row:       td.Index(),
		Flags:     flags,
	}
	if ext := td.Extends(); !ext.IsNone() {
		if bns, bname, err := db.TypeNameOf(ext); err == nil {
			e.Extends = joinName(bns, bname)
		}
	}
	if e.IsEnum, err = td.IsEnum(); err != nil {
		return nil, nil, err
	}
	if !e.IsEnum {
		return e, nil, nil
	}
	info, err := td.EnumInfo()
	if err != nil {
		return nil, nil, err
	}
	return e, makeEnumRecord(info), nil
}

// Remove forgets everything indexed from source.
func (c *Catalog) Remove(source string) error {
	err := c.bdb.Update(func(btx *bbolt.Tx) error {
		if btx.Bucket(sourcesBucket).Get([]byte(source)) == nil {
			return fmt.Errorf("source %s: %w", source, clrmeta.ErrNotFound)
		}
		if err := dropSource(btx, source); err != nil {
			return err
		}
		return btx.Bucket(sourcesBucket).Delete([]byte(source))
	})
	if err == nil {
		c.log("catalog: removed", slog.String("source", source))
	}
	return err
}

// dropSource deletes the types previously contributed by source, unless a
// later source has since claimed them.
func dropSource(btx *bbolt.Tx, source string) error {
	raw := btx.Bucket(sourcesBucket).Get([]byte(source))
	if raw == nil {
		return nil
	}
	var prev Source
	if err := decodeValue(raw, &prev); err != nil {
		return err
	}
	types := btx.Bucket(typesBucket)
	enums := btx.Bucket(enumsBucket)
	for _, k := range prev.TypeNames {
		key := unsafeBytesFromString(k)
		v := types.Get(key)
		if v == nil {
			continue
		}
		var e TypeEntry
		if err := decodeValue(v, &e); err != nil {
			return err
		}
		if e.Source != source {
			continue
		}
		if err := types.Delete(key); err != nil {
			return err
		}
		if err := enums.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func joinName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
