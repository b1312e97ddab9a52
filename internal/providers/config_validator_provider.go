package providers

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"

	"aisd/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate applies the struct tag rules, then the rules that span fields.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}

	switch cv.conf.Storage.Driver {
	case "sqlite":
		if cv.conf.Storage.Path == "" {
			return errors.New("invalid config: storage.path is required for sqlite")
		}
	case "postgres":
		if cv.conf.Storage.DSN == "" {
			return errors.New("invalid config: storage.dsn is required for postgres")
		}
	}

	for i, box := range cv.conf.Stream.BoundingBoxes {
		if len(box) != 2 || len(box[0]) != 2 || len(box[1]) != 2 {
			return fmt.Errorf("invalid config: stream.boundingBoxes[%d] must be [[lat, lon], [lat, lon]]", i)
		}
	}

	if cv.conf.Nats.Enabled && cv.conf.Nats.URL == "" {
		return errors.New("invalid config: nats.url is required when nats is enabled")
	}
	return nil
}
