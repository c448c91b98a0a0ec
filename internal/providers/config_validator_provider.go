package providers

import (
	"errors"
	"fmt"
	"github.com/gookit/validate"
	"time"
	"translit/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.Error())
	}
	if cv.conf.Api.Timeout < time.Second {
		return fmt.Errorf("invalid config: api.timeout must be at least 1s, got %s", cv.conf.Api.Timeout)
	}
	if cv.conf.Metrics.Enabled && cv.conf.Metrics.Addr == "" {
		return errors.New("invalid config: metrics.addr is required when metrics are enabled")
	}
	return nil
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}
