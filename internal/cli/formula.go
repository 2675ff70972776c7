package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/billios/pkg/fieldtest"
)

// formulaFlags holds the inputs of one formula command. Composite commands
// register the flags of every calculator they can nest, and a literal flag
// (for example --sand-used) takes precedence over the nested inputs.
type formulaFlags struct {
	pre, post, sandInCone float64
	soil, sandUsed        float64
	sandDensity           float64

	wetWeight, dryWeight, tarePan float64

	wetDensity, moistureContent float64
	dryDensity, labMax          float64

	leftOnSieve, preSieve           float64
	rockCorrection, specificGravity float64

	json bool
}

func addSandUsedFlags(cmd *cobra.Command, f *formulaFlags) {
	cmd.Flags().Float64Var(&f.pre, "pre", 0, "Cone and sand weight before the test")
	cmd.Flags().Float64Var(&f.post, "post", 0, "Cone and sand weight after the test")
	cmd.Flags().Float64Var(&f.sandInCone, "sand-in-cone", fieldtest.DefaultSandInCone, "Weight of sand filling the cone (overrides config)")
}

func addWetDensityFlags(cmd *cobra.Command, f *formulaFlags) {
	addSandUsedFlags(cmd, f)
	cmd.Flags().Float64Var(&f.soil, "soil", 0, "Weight of soil removed from the hole")
	cmd.Flags().Float64Var(&f.sandUsed, "sand-used", 0, "Known sand used weight (skips --pre/--post)")
	cmd.Flags().Float64Var(&f.sandDensity, "sand-density", fieldtest.DefaultSandDensity, "Bulk density of the calibrated sand (overrides config)")
}

func addMoistureFlags(cmd *cobra.Command, f *formulaFlags) {
	cmd.Flags().Float64Var(&f.wetWeight, "wet-weight", 0, "Sample weight before drying, including the pan")
	cmd.Flags().Float64Var(&f.dryWeight, "dry-weight", 0, "Sample weight after drying, including the pan")
	cmd.Flags().Float64Var(&f.tarePan, "tare-pan", 0, "Weight of the empty pan")
}

func addDryDensityFlags(cmd *cobra.Command, f *formulaFlags) {
	addWetDensityFlags(cmd, f)
	addMoistureFlags(cmd, f)
	cmd.Flags().Float64Var(&f.wetDensity, "wet-density", 0, "Known wet density (skips the sand cone inputs)")
	cmd.Flags().Float64Var(&f.moistureContent, "moisture-content", 0, "Known moisture content ratio (skips the sample weights)")
}

func addRockCorrectionFlags(cmd *cobra.Command, f *formulaFlags) {
	cmd.Flags().Float64Var(&f.leftOnSieve, "left-on-sieve", 0, "Weight retained on the sieve")
	cmd.Flags().Float64Var(&f.preSieve, "pre-sieve", 0, "Total weight before sieving")
}

func addJSONFlag(cmd *cobra.Command, f *formulaFlags) {
	cmd.Flags().BoolVar(&f.json, "json", false, "Output the result as JSON")
}

// calibrationOptions starts from the configured calibration and applies any
// constant set explicitly on the command line, zero included.
func calibrationOptions(cmd *cobra.Command, f *formulaFlags) []fieldtest.Option {
	opts := []fieldtest.Option{fieldtest.WithCalibration(Runner.Calibration())}
	if cmd.Flags().Changed("sand-in-cone") {
		opts = append(opts, fieldtest.WithSandInCone(f.sandInCone))
	}
	if cmd.Flags().Changed("sand-density") {
		opts = append(opts, fieldtest.WithSandDensity(f.sandDensity))
	}
	if cmd.Flags().Changed("specific-gravity") {
		opts = append(opts, fieldtest.WithSpecificGravity(f.specificGravity))
	}
	return opts
}

func sandUsedChoice(cmd *cobra.Command, f *formulaFlags) fieldtest.SandUsedChoice {
	if cmd.Flags().Changed("sand-used") {
		return fieldtest.SandUsedValue(f.sandUsed)
	}
	return fieldtest.SandUsedOf(fieldtest.NewSandUsed(f.pre, f.post, calibrationOptions(cmd, f)...))
}

func wetDensityCalc(cmd *cobra.Command, f *formulaFlags) fieldtest.WetDensity {
	return fieldtest.NewWetDensity(f.soil, sandUsedChoice(cmd, f), calibrationOptions(cmd, f)...)
}

func dryDensityCalc(cmd *cobra.Command, f *formulaFlags) fieldtest.DryDensity {
	wet := fieldtest.WetDensityValue(f.wetDensity)
	if !cmd.Flags().Changed("wet-density") {
		wet = fieldtest.WetDensityOf(wetDensityCalc(cmd, f))
	}
	moisture := fieldtest.MoistureContentValue(f.moistureContent)
	if !cmd.Flags().Changed("moisture-content") {
		moisture = fieldtest.MoistureContentOf(fieldtest.NewMoistureContent(f.wetWeight, f.dryWeight, f.tarePan))
	}
	return fieldtest.NewDryDensity(wet, moisture)
}

// runFormula evaluates c through the shared runner and prints the result.
func runFormula(cmd *cobra.Command, f *formulaFlags, name string, inputs map[string]float64, c fieldtest.Calculator) error {
	if Runner == nil {
		return fmt.Errorf("formula runner not initialized")
	}

	result, err := Runner.Run(name, inputs, c)
	if err != nil {
		return fmt.Errorf("calculating %s: %w", name, err)
	}

	return printFormulaResult(cmd.OutOrStdout(), name, result, f.json)
}

func printFormulaResult(w io.Writer, name string, result float64, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintf(w, "%s: %v\n", name, result)
		return err
	}

	// JSON cannot encode Inf or NaN, so JSON output is always strict.
	if _, err := fieldtest.Check(name, result); err != nil {
		return fmt.Errorf("formatting %s as JSON: %w", name, err)
	}
	data, err := json.MarshalIndent(map[string]any{"formula": name, "result": result}, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting %s as JSON: %w", name, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

var sandUsedFlags formulaFlags

var sandUsedCmd = &cobra.Command{
	Use:   "sand-used",
	Short: "Weight of sand used by a sand-cone test",
	Long: `Compute the weight of sand that filled the test hole:

  sand used = pre - (post + sand in cone)

rounded to 2 decimals. The sand-in-cone constant comes from the
configuration unless --sand-in-cone is given.`,
	Example: "  billios sand-used --pre 14.65 --post 8.75",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("formula runner not initialized")
		}
		f := &sandUsedFlags
		calc := fieldtest.NewSandUsed(f.pre, f.post, calibrationOptions(cmd, f)...)
		return runFormula(cmd, f, "sand_used", map[string]float64{
			"cone_pre_test":  calc.ConePreTest(),
			"cone_post_test": calc.ConePostTest(),
			"sand_in_cone":   calc.SandInCone(),
		}, calc)
	},
}

var wetDensityFlags formulaFlags

var wetDensityCmd = &cobra.Command{
	Use:   "wet-density",
	Short: "In-place wet density from a sand-cone test",
	Long: `Compute the wet density of the soil removed from the test hole:

  wet density = soil / sand used * sand density

rounded to 4 decimals. Pass --sand-used when it is already known, or the
cone weights (--pre, --post) to compute it.`,
	Example: `  billios wet-density --soil 4.65 --sand-used 2.31
  billios wet-density --soil 4.65 --pre 14.65 --post 8.75`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("formula runner not initialized")
		}
		f := &wetDensityFlags
		calc := wetDensityCalc(cmd, f)
		return runFormula(cmd, f, "wet_density", map[string]float64{
			"soil":         calc.Soil(),
			"sand_used":    calc.SandUsed(),
			"sand_density": calc.SandDensity(),
		}, calc)
	},
}

var moistureFlags formulaFlags

var moistureCmd = &cobra.Command{
	Use:   "moisture",
	Short: "Moisture content of a soil sample",
	Long: `Compute the moisture content ratio of an oven-dried sample:

  moisture = (wet - dry) / (dry - tare)

rounded to 8 decimals.`,
	Example: "  billios moisture --wet-weight 5 --dry-weight 4.5 --tare-pan 1",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &moistureFlags
		calc := fieldtest.NewMoistureContent(f.wetWeight, f.dryWeight, f.tarePan)
		return runFormula(cmd, f, "moisture_content", map[string]float64{
			"wet_weight": calc.WetWeight(),
			"dry_weight": calc.DryWeight(),
			"tare_pan":   calc.TarePan(),
		}, calc)
	},
}

var dryDensityFlags formulaFlags

var dryDensityCmd = &cobra.Command{
	Use:   "dry-density",
	Short: "Dry density from wet density and moisture content",
	Long: `Compute the dry density:

  dry density = wet density / (1 + moisture)

rounded to a whole number. Each input is either given directly
(--wet-density, --moisture-content) or computed from raw field weights.`,
	Example: `  billios dry-density --wet-density 177.1429 --moisture-content 0.14285714
  billios dry-density --soil 4.65 --pre 14.65 --post 8.75 --wet-weight 5 --dry-weight 4.5 --tare-pan 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("formula runner not initialized")
		}
		f := &dryDensityFlags
		calc := dryDensityCalc(cmd, f)
		return runFormula(cmd, f, "dry_density", map[string]float64{
			"wet_density":      calc.WetDensity(),
			"moisture_content": calc.MoistureContent(),
		}, calc)
	},
}

var compactionFlags formulaFlags

var compactionCmd = &cobra.Command{
	Use:   "compaction",
	Short: "Relative compaction against the lab maximum",
	Long: `Compute the relative compaction percent:

  compaction = dry density / lab max * 100

rounded to 1 decimal. --dry-density may be omitted in favour of the
dry-density inputs.`,
	Example: "  billios compaction --dry-density 155 --lab-max 135.6",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("formula runner not initialized")
		}
		f := &compactionFlags
		dry := fieldtest.DryDensityValue(f.dryDensity)
		if !cmd.Flags().Changed("dry-density") {
			dry = fieldtest.DryDensityOf(dryDensityCalc(cmd, f))
		}
		calc := fieldtest.NewCompaction(dry, f.labMax)
		return runFormula(cmd, f, "compaction", map[string]float64{
			"dry_density": calc.DryDensity(),
			"lab_max":     calc.LabMax(),
		}, calc)
	},
}

var rockCorrectionFlags formulaFlags

var rockCorrectionCmd = &cobra.Command{
	Use:     "rock-correction",
	Short:   "Oversize fraction retained on the sieve",
	Long:    "Compute left on sieve / pre-sieve weight, rounded to 1 decimal.",
	Example: "  billios rock-correction --left-on-sieve 2 --pre-sieve 10",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &rockCorrectionFlags
		calc := fieldtest.NewRockCorrection(f.leftOnSieve, f.preSieve)
		return runFormula(cmd, f, "rock_correction", map[string]float64{
			"left_on_sieve_weight": calc.LeftOnSieveWeight(),
			"pre_sieve_weight":     calc.PreSieveWeight(),
		}, calc)
	},
}

var labMaxFlags formulaFlags

var labMaxCmd = &cobra.Command{
	Use:   "lab-max",
	Short: "Lab maximum dry density corrected for oversize",
	Long: `Correct the lab maximum dry density for the oversize fraction:

  corrected = (1 - 0.05 rc) / (rc / (62.4 sg) + (1 - rc) / lab max)

rounded to 1 decimal. The rock correction is given with --rock-correction
or computed from the sieve weights.`,
	Example: "  billios lab-max --left-on-sieve 2 --pre-sieve 10 --lab-max 135.6",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("formula runner not initialized")
		}
		f := &labMaxFlags
		rock := fieldtest.RockCorrectionValue(f.rockCorrection)
		if !cmd.Flags().Changed("rock-correction") {
			rock = fieldtest.RockCorrectionOf(fieldtest.NewRockCorrection(f.leftOnSieve, f.preSieve))
		}
		calc := fieldtest.NewLabMaxCorrection(rock, f.labMax, calibrationOptions(cmd, f)...)
		return runFormula(cmd, f, "lab_max_correction", map[string]float64{
			"rock_correction":  calc.RockCorrection(),
			"lab_max":          calc.LabMax(),
			"specific_gravity": calc.SpecificGravity(),
		}, calc)
	},
}

func init() {
	addSandUsedFlags(sandUsedCmd, &sandUsedFlags)
	addJSONFlag(sandUsedCmd, &sandUsedFlags)

	addWetDensityFlags(wetDensityCmd, &wetDensityFlags)
	addJSONFlag(wetDensityCmd, &wetDensityFlags)

	addMoistureFlags(moistureCmd, &moistureFlags)
	addJSONFlag(moistureCmd, &moistureFlags)

	addDryDensityFlags(dryDensityCmd, &dryDensityFlags)
	addJSONFlag(dryDensityCmd, &dryDensityFlags)

	addDryDensityFlags(compactionCmd, &compactionFlags)
	compactionCmd.Flags().Float64Var(&compactionFlags.dryDensity, "dry-density", 0, "Known field dry density (skips the dry density inputs)")
	compactionCmd.Flags().Float64Var(&compactionFlags.labMax, "lab-max", 0, "Laboratory maximum dry density")
	addJSONFlag(compactionCmd, &compactionFlags)

	addRockCorrectionFlags(rockCorrectionCmd, &rockCorrectionFlags)
	addJSONFlag(rockCorrectionCmd, &rockCorrectionFlags)

	addRockCorrectionFlags(labMaxCmd, &labMaxFlags)
	labMaxCmd.Flags().Float64Var(&labMaxFlags.rockCorrection, "rock-correction", 0, "Known rock correction fraction (skips the sieve weights)")
	labMaxCmd.Flags().Float64Var(&labMaxFlags.labMax, "lab-max", 0, "Laboratory maximum dry density")
	labMaxCmd.Flags().Float64Var(&labMaxFlags.specificGravity, "specific-gravity", fieldtest.DefaultSpecificGravity, "Specific gravity of the oversize material (overrides config)")
	addJSONFlag(labMaxCmd, &labMaxFlags)

	rootCmd.AddCommand(sandUsedCmd, wetDensityCmd, moistureCmd, dryDensityCmd,
		compactionCmd, rockCorrectionCmd, labMaxCmd)
}
