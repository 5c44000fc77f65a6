package catalog

import (
	"bytes"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/andreyvit/clrmeta"
)

// Lookup finds a type by namespace and name.
func (c *Catalog) Lookup(namespace, name string) (*TypeEntry, error) {
	var e TypeEntry
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		raw := btx.Bucket(typesBucket).Get(typeKey(namespace, name))
		if raw == nil {
			return fmt.Errorf("type %s: %w", joinName(namespace, name), clrmeta.ErrNotFound)
		}
		return decodeValue(raw, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ResolveEnum implements clrmeta.TypeResolver.
func (c *Catalog) ResolveEnum(namespace, name string) (*clrmeta.EnumInfo, error) {
	var rec enumRecord
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		raw := btx.Bucket(enumsBucket).Get(typeKey(namespace, name))
		if raw == nil {
			return fmt.Errorf("enum %s: %w", joinName(namespace, name), clrmeta.ErrNotFound)
		}
		return decodeValue(raw, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.info(namespace, name), nil
}

// Types returns the types of a namespace ordered by name.
func (c *Catalog) Types(namespace string) ([]*TypeEntry, error) {
	var result []*TypeEntry
	prefix := namespacePrefix(namespace)
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		cur := btx.Bucket(typesBucket).Cursor()
		for k, v := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cur.Next() {
			e := new(TypeEntry)
			if err := decodeValue(v, e); err != nil {
				return err
			}
			result = append(result, e)
		}
		return nil
	})
	return result, err
}

// Namespaces returns every namespace with at least one type, in order.
func (c *Catalog) Namespaces() ([]string, error) {
	var result []string
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		cur := btx.Bucket(typesBucket).Cursor()
		for k, _ := cur.First(); k != nil; {
			ns := k[:bytes.IndexByte(k, 0)]
			result = append(result, string(ns))
			k, _ = cur.Seek(append(bytes.Clone(ns), 1))
		}
		return nil
	})
	return result, err
}

// Sources returns the indexed images ordered by path.
func (c *Catalog) Sources() ([]*Source, error) {
	var result []*Source
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(sourcesBucket).ForEach(func(k, v []byte) error {
			s := new(Source)
			if err := decodeValue(v, s); err != nil {
				return err
			}
			result = append(result, s)
			return nil
		})
	})
	return result, err
}
