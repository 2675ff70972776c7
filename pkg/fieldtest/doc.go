// Package fieldtest implements the soil field-test formulae used on a
// sand-cone density report: sand used, wet density, moisture content, dry
// density, percent compaction, rock correction and the rock-corrected lab
// maximum density.
//
// Every calculator is an immutable value built by a New* constructor and
// evaluated with Calculate. Composite calculators take a Choice for each
// upstream input, so a caller can either pass a value already known from the
// field sheet or nest the upstream calculator and let it run at Calculate
// time:
//
//	wet := fieldtest.NewWetDensity(4.65, fieldtest.SandUsedValue(2.31))
//	mc := fieldtest.NewMoistureContent(1600, 1575, 1400)
//	dry := fieldtest.NewDryDensity(fieldtest.WetDensityOf(wet), fieldtest.MoistureContentOf(mc))
//	dry.Calculate() // 155
//
// Calibration constants (sand in cone, sand density, specific gravity) have
// defaults that can be replaced per calculator with an Option.
//
// Results follow IEEE-754 semantics: a zero denominator yields +Inf, -Inf or
// NaN rather than an error. Use Check to turn such a result into
// ErrNonFinite.
package fieldtest
