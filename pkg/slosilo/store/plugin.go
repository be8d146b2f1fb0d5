package store

import (
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
)

type options struct {
	cipher slosilo.SymmetricCipher
}

// ApplyOption applies a given set of supplied options
type ApplyOption func(o *options)

// WithCipher sets the symmetric cipher used for field encryption.
func WithCipher(cipher slosilo.SymmetricCipher) ApplyOption {
	return func(o *options) {
		o.cipher = cipher
	}
}

type processor func(content []byte, aad []byte) ([]byte, error)

// siloPlugin encrypts model fields tagged `slosilo:"encrypted;aad:<Field>"`
// before writes and decrypts them after reads. The named sibling field's
// value is bound into the ciphertext as additional authenticated data, so a
// ciphertext moved onto another row fails to open.
type siloPlugin struct {
	opt *options
}

// NewPlugin constructs the gorm plugin.
func NewPlugin(opts ...ApplyOption) gorm.Plugin {
	dst := new(options)
	for _, apply := range opts {
		apply(dst)
	}

	return siloPlugin{opt: dst}
}

func (s siloPlugin) Name() string {
	return "silo"
}

func (s siloPlugin) Initialize(db *gorm.DB) (err error) {
	db.Callback().Create().Before("gorm:create").Register("silo:before_create", s.encryptQuery)
	db.Callback().Create().After("gorm:create").Register("silo:after_create", s.decryptQuery)
	db.Callback().Update().Before("gorm:update").Register("silo:before_update", s.encryptQuery)
	db.Callback().Query().After("gorm:query").Register("silo:after_query", s.decryptQuery)

	return
}

func (s siloPlugin) encrypt(content, aad []byte) ([]byte, error) {
	return s.opt.cipher.Encrypt(aad, content)
}

func (s siloPlugin) decrypt(content, aad []byte) ([]byte, error) {
	return s.opt.cipher.Decrypt(aad, content)
}

func (s siloPlugin) encryptQuery(db *gorm.DB) {
	s.processQuery(db, s.encrypt)
}

func (s siloPlugin) decryptQuery(db *gorm.DB) {
	s.processQuery(db, s.decrypt)
}

func (s siloPlugin) processQuery(db *gorm.DB, fn processor) {
	if db.Statement.Schema == nil {
		return
	}

	switch db.Statement.ReflectValue.Kind() {
	case reflect.Struct:
		s.processFields(db, db.Statement.ReflectValue, fn)
	case reflect.Slice, reflect.Array:
		for i := 0; i < db.Statement.ReflectValue.Len(); i++ {
			s.processFields(db, db.Statement.ReflectValue.Index(i), fn)
		}
	}
}

func (s siloPlugin) processFields(db *gorm.DB, reflectValue reflect.Value, fn processor) {
	for _, field := range db.Statement.Schema.Fields {
		aadField, encrypted := parseSiloTag(field.Tag.Get("slosilo"))
		if !encrypted {
			continue
		}

		fieldValue, isZero := field.ValueOf(db.Statement.Context, reflectValue)
		if isZero {
			continue
		}

		var content []byte
		switch v := fieldValue.(type) {
		case []byte:
			content = v
		case string:
			content = []byte(v)
		default:
			_ = db.AddError(fmt.Errorf("silo: unsupported encrypted field type %T on %s", fieldValue, field.Name))
			continue
		}

		result, err := fn(content, s.additionalData(db, reflectValue, aadField))
		if err != nil {
			_ = db.AddError(fmt.Errorf("silo: %s: %w", field.Name, err))
			continue
		}

		if _, isString := fieldValue.(string); isString {
			_ = field.Set(db.Statement.Context, reflectValue, string(result))
		} else {
			_ = field.Set(db.Statement.Context, reflectValue, result)
		}
	}
}

func (s siloPlugin) additionalData(db *gorm.DB, reflectValue reflect.Value, aadField string) []byte {
	if aadField == "" {
		return nil
	}

	field := db.Statement.Schema.LookUpField(aadField)
	if field == nil {
		return nil
	}

	fieldValue, isZero := field.ValueOf(db.Statement.Context, reflectValue)
	if isZero {
		return nil
	}

	switch v := fieldValue.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	}
	return nil
}

// parseSiloTag parses `encrypted;aad:<Field>` and returns the AAD field
// name along with whether the field is marked encrypted.
func parseSiloTag(tag string) (aadField string, encrypted bool) {
	for _, part := range strings.Split(tag, ";") {
		switch {
		case part == "encrypted":
			encrypted = true
		case strings.HasPrefix(part, "aad:"):
			aadField = strings.TrimPrefix(part, "aad:")
		}
	}
	return aadField, encrypted
}
