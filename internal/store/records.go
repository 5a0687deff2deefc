package store

import (
	"errors"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Key schema.
//
// Primary records hold a JSON map of scalar fields:
//
//	climber:{name}    album:{url}    location:{name}    meme:{id}    user:{id}
//
// Set-valued fields live in set sub-records, one key per member with an
// empty value; membership reads are prefix scans:
//
//	set:{kind}:{key}:{field}:{member} → ""
//
// Every indexed value carries a reverse index of referencing entity keys,
// and each indexed field keeps a global set of every value ever used:
//
//	idx:{kind}:{field}:{value}:{entityKey} → ""
//	idx:{field}:all:{value}               → ""
//
// Ownership is a pair of mirrored set records:
//
//	own:{kind}:{resourceKey}:{userID}   → ""
//	owned:{userID}:{kind}:{resourceKey} → ""
//
// Entity keys may themselves contain colons (album URLs), so suffixes are
// always recovered by trimming a fully-known prefix, never by splitting
// on the separator.

// setFieldPrefix returns the scan prefix for one entity's set-valued field.
func setFieldPrefix(kind, key, field string) string {
	return "set:" + kind + ":" + key + ":" + field + ":"
}

// reverseIndexPrefix returns the scan prefix for entities referencing value.
func reverseIndexPrefix(kind, field, value string) string {
	return "idx:" + kind + ":" + field + ":" + value + ":"
}

// globalIndexKey returns the global-index key for a field value.
func globalIndexKey(field, value string) string {
	return "idx:" + field + ":all:" + value
}

// scanSuffixesTxn collects the key suffixes under prefix, sorted.
// This is the set-membership read: members of a set record, entity keys
// in a reverse index, owner IDs of a resource.
func scanSuffixesTxn(txn *badger.Txn, prefix string) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var members []string
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		key := string(it.Item().Key())
		members = append(members, strings.TrimPrefix(key, prefix))
	}
	sort.Strings(members)
	return members, nil
}

// countPrefixTxn counts keys under prefix without fetching values.
func countPrefixTxn(txn *badger.Txn, prefix string) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		count++
	}
	return count, nil
}

// addMemberTxn adds a member key (empty value). Idempotent.
func addMemberTxn(txn *badger.Txn, key string) error {
	return txn.Set([]byte(key), []byte{})
}

// removeMemberTxn removes a member key. Idempotent.
func removeMemberTxn(txn *badger.Txn, key string) error {
	err := txn.Delete([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// diffMembers computes the change set between the stored membership and
// the desired one. Cost is proportional to the change, not the set size;
// callers apply exactly these additions and removals, never a rebuild.
func diffMembers(current, desired []string) (added, removed []string) {
	have := make(map[string]bool, len(current))
	for _, m := range current {
		have[m] = true
	}
	want := make(map[string]bool, len(desired))
	for _, m := range desired {
		want[m] = true
		if !have[m] {
			added = append(added, m)
		}
	}
	for _, m := range current {
		if !want[m] {
			removed = append(removed, m)
		}
	}
	return added, removed
}
