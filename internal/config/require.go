package config

import (
	"errors"
	"fmt"
)

// Validate reports every required setting that is missing, not just the first.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, missing("DATABASE_URL"))
	}
	if len(c.JWTAccessSecret) == 0 {
		errs = append(errs, missing("JWT_SECRET"))
	}
	if len(c.JWTRefreshSecret) == 0 {
		errs = append(errs, missing("JWT_REFRESH_SECRET"))
	}
	if c.S3Bucket == "" {
		errs = append(errs, missing("S3_BUCKET"))
	}
	return errors.Join(errs...)
}

func missing(env string) error {
	return fmt.Errorf("missing required env %s", env)
}
