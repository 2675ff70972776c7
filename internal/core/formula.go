package core

import "github.com/valter-silva-au/billios/pkg/fieldtest"

// FormulaRunner evaluates single calculators on behalf of the CLI and the
// MCP server and records each evaluation in the event log.
type FormulaRunner interface {
	// Run calculates c, logs the inputs and result under name, and returns
	// the result. In strict mode a non-finite result is returned together
	// with an error wrapping fieldtest.ErrNonFinite.
	Run(name string, inputs map[string]float64, c fieldtest.Calculator) (float64, error)
	// Calibration returns the configured calibration constants.
	Calibration() fieldtest.Calibration
}

type formulaRunner struct {
	calibration fieldtest.Calibration
	strict      bool
	logger      EventLogger
}

// NewFormulaRunner creates a FormulaRunner. logger may be nil.
func NewFormulaRunner(calibration fieldtest.Calibration, strict bool, logger EventLogger) FormulaRunner {
	return &formulaRunner{
		calibration: calibration,
		strict:      strict,
		logger:      logger,
	}
}

func (r *formulaRunner) Run(name string, inputs map[string]float64, c fieldtest.Calculator) (float64, error) {
	result := c.Calculate()
	_, checkErr := fieldtest.Check(name, result)

	data := map[string]any{
		"formula": name,
		"finite":  checkErr == nil,
	}
	// JSON cannot carry Inf or NaN.
	for k, v := range inputs {
		if _, err := fieldtest.Check(k, v); err == nil {
			data[k] = v
		}
	}
	if checkErr == nil {
		data["result"] = result
	}
	logEvent(r.logger, EventCalculationPerformed, data)

	if r.strict && checkErr != nil {
		return result, checkErr
	}
	return result, nil
}

func (r *formulaRunner) Calibration() fieldtest.Calibration {
	return r.calibration
}
