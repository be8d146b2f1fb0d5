package store

import (
	"errors"
	"regexp"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
)

var accountKeyIdRgx = regexp.MustCompile(`^authn:([^:]*)`)

// Key is a signing key fetched from the keystore, bound to the account it
// signs tokens for.
type Key struct {
	*slosilo.Key
	account string
}

func (k Key) Account() string {
	return k.account
}

// KeyStore loads per-account token signing keys from the slosilo_keystore
// table. Key material is decrypted by the silo plugin on read; fetched keys
// are cached for the life of the store.
type KeyStore struct {
	db                *gorm.DB
	keysById          map[string]*Key
	keysByFingerprint map[string]*Key
}

func NewKeyStore(db *gorm.DB) *KeyStore {
	return &KeyStore{
		db:                db,
		keysById:          map[string]*Key{},
		keysByFingerprint: map[string]*Key{},
	}
}

func (k *KeyStore) fetchKey(query map[string]string) (*Key, error) {
	var storedKey model.Key
	if err := k.db.Where(query).First(&storedKey).Error; err != nil {
		return nil, err
	}

	keyInstance, err := slosilo.NewKey(storedKey.Key)
	if err != nil {
		return nil, err
	}

	accountKeyIdMatches := accountKeyIdRgx.FindStringSubmatch(storedKey.Id)
	if len(accountKeyIdMatches) < 2 {
		return nil, errors.New("key has malformed id")
	}

	if storedKey.Fingerprint != keyInstance.Fingerprint() {
		return nil, errors.New("key has bad stored fingerprint")
	}

	key := &Key{
		Key:     keyInstance,
		account: accountKeyIdMatches[1],
	}

	k.keysById[storedKey.Id] = key
	k.keysByFingerprint[storedKey.Fingerprint] = key

	return key, nil
}

func (k *KeyStore) ByFingerprint(fingerprint string) (*Key, error) {
	if key, ok := k.keysByFingerprint[fingerprint]; ok {
		return key, nil
	}

	return k.fetchKey(map[string]string{"fingerprint": fingerprint})
}

func (k *KeyStore) ByAccount(account string) (*Key, error) {
	id := "authn:" + account

	if key, ok := k.keysById[id]; ok {
		return key, nil
	}

	return k.fetchKey(map[string]string{"id": id})
}

// List returns all key IDs in the keystore. A raw query skips the silo
// decryption callback since only the id column is read.
func (k *KeyStore) List() ([]string, error) {
	var ids []string
	if err := k.db.Raw(`SELECT id FROM slosilo_keystore`).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Put stores a signing key under the given ID, typically "authn:<account>".
func (k *KeyStore) Put(id string, key *slosilo.Key) error {
	keyBytes, err := key.Serialize()
	if err != nil {
		return err
	}

	storedKey := model.Key{
		Id:          id,
		Fingerprint: key.Fingerprint(),
		Key:         keyBytes,
	}
	if err := k.db.Create(&storedKey).Error; err != nil {
		return err
	}

	account := ""
	if matches := accountKeyIdRgx.FindStringSubmatch(id); len(matches) > 1 {
		account = matches[1]
	}

	cached := &Key{Key: key, account: account}
	k.keysById[id] = cached
	k.keysByFingerprint[storedKey.Fingerprint] = cached

	return nil
}

// Delete removes a key by its ID.
func (k *KeyStore) Delete(id string) error {
	if key, ok := k.keysById[id]; ok {
		delete(k.keysByFingerprint, key.Fingerprint())
		delete(k.keysById, id)
	}

	return k.db.Where("id = ?", id).Delete(&model.Key{}).Error
}
