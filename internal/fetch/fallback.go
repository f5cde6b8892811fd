package fetch

import (
	"context"
	"errors"
)

// Fallback tries Primary first; if it fails, or its payload does not pass Validate,
// Secondary is tried once. There is no retry beyond that.
type Fallback struct {
	Primary   Source
	Secondary Source
	// Validate, when set, rejects a payload as if its source had failed.
	Validate func([]byte) error
	// OnFallback is called with the primary error before Secondary is tried.
	OnFallback func(err error)
}

// Fetch reads primaryName from Primary, falling back to secondaryName on Secondary.
// When both fail the returned error joins both causes.
func (f *Fallback) Fetch(ctx context.Context, primaryName, secondaryName string) ([]byte, error) {
	data, err := f.try(ctx, f.Primary, primaryName)
	if err == nil {
		return data, nil
	}
	if f.Secondary == nil {
		return nil, err
	}
	if f.OnFallback != nil {
		f.OnFallback(err)
	}
	data, err2 := f.try(ctx, f.Secondary, secondaryName)
	if err2 != nil {
		return nil, errors.Join(err, err2)
	}
	return data, nil
}

func (f *Fallback) try(ctx context.Context, src Source, name string) ([]byte, error) {
	if src == nil {
		return nil, errors.New("fetch: no source")
	}
	data, err := src.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if f.Validate != nil {
		if err := f.Validate(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}
