package drugcampaign

import (
	"fmt"

	"campaigner/internal/campaign"
)

// Configuration errors of the dispatcher. Each also matches
// campaign.ErrInvalidConfig.
var (
	ErrUnknownType    = fmt.Errorf("%w: unknown campaign type", campaign.ErrInvalidConfig)
	ErrUnknownDrug    = fmt.Errorf("%w: unknown drug code", campaign.ErrInvalidConfig)
	ErrAmbiguousDrugs = fmt.Errorf("%w: drug code and custom drug configurations are mutually exclusive", campaign.ErrInvalidConfig)
	ErrNoDrugs        = fmt.Errorf("%w: a drug code or custom drug configurations are required", campaign.ErrInvalidConfig)
)
