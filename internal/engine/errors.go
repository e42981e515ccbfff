package engine

import (
	"errors"
	"fmt"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/rules"
)

// RegionError reports a region whose topics could not be listed. The audit
// moves on to the next region.
type RegionError struct {
	Profile string
	Region  string
	Err     error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("profile %q region %s: %v", e.Profile, e.Region, e.Err)
}

func (e *RegionError) Unwrap() error { return e.Err }

// Record converts e into its report form.
func (e *RegionError) Record() models.CheckErrorRecord {
	return models.CheckErrorRecord{Region: e.Region, Message: e.Err.Error()}
}

// ErrorRecord classifies an error yielded by Stream. Check and region errors
// are recoverable and return their report form with ok set; any other error
// is fatal.
func ErrorRecord(err error) (rec models.CheckErrorRecord, ok bool) {
	var ce *rules.CheckError
	if errors.As(err, &ce) {
		return ce.Record(), true
	}
	var re *RegionError
	if errors.As(err, &re) {
		return re.Record(), true
	}
	return models.CheckErrorRecord{}, false
}
