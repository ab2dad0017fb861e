package meta

import "strings"

// Key-paths of the ICS header fields the codec understands.
const (
	KeyVersion  = "ics_version"
	KeyFilename = "filename"

	KeySourceFile   = "source.file"
	KeySourceOffset = "source.offset"
	KeySourceLength = "source.length"

	KeyParameters      = "layout.parameters"
	KeyOrder           = "layout.order"
	KeySizes           = "layout.sizes"
	KeyCoordinates     = "layout.coordinates"
	KeySignificantBits = "layout.significant_bits"

	KeyFormat      = "representation.format"
	KeySign        = "representation.sign"
	KeyCompression = "representation.compression"
	KeyByteOrder   = "representation.byte_order"
	KeySCILType    = "representation.SCIL_TYPE"

	KeyOrigin = "parameter.origin"
	KeyScale  = "parameter.scale"
	KeyUnits  = "parameter.units"
	KeyLabels = "parameter.labels"

	KeySensorType  = "sensor.type"
	KeySensorModel = "sensor.model"
)

// sensorParams lists the canonical spelling of the sensor s_params and
// s_states names written by microscopy software.
var sensorParams = []string{
	"Channels",
	"PinholeRadius",
	"LambdaEx",
	"LambdaEm",
	"ExPhotonCnt",
	"RefrInxMedium",
	"NumAperture",
	"RefrInxLensMedium",
	"PinholeSpacing",
	"STEDDepletionMode",
	"STEDLambda",
	"STEDSatFactor",
	"STEDImmFraction",
	"STEDVPPM",
	"DetectorPPU",
	"DetectorBaseline",
	"DetectorLineAvgCnt",
}

var canonical = func() map[string]string {
	m := make(map[string]string)
	for _, k := range []string{
		KeyVersion, KeyFilename,
		KeySourceFile, KeySourceOffset, KeySourceLength,
		KeyParameters, KeyOrder, KeySizes, KeyCoordinates, KeySignificantBits,
		KeyFormat, KeySign, KeyCompression, KeyByteOrder, KeySCILType,
		KeyOrigin, KeyScale, KeyUnits, KeyLabels,
		KeySensorType, KeySensorModel,
	} {
		m[strings.ToLower(k)] = k
	}
	return m
}()

var canonicalParams = func() map[string]string {
	m := make(map[string]string, len(sensorParams))
	for _, p := range sensorParams {
		m[strings.ToLower(p)] = p
	}
	return m
}()

// Canonical returns the canonical spelling of a key-path. Known ICS keys
// keep their documented case, everything else is lower-cased.
func Canonical(key string) string {
	lower := strings.ToLower(strings.TrimSpace(key))
	if c, ok := canonical[lower]; ok {
		return c
	}
	parts := strings.Split(lower, ".")
	if len(parts) == 3 && parts[0] == "sensor" && (parts[1] == "s_params" || parts[1] == "s_states") {
		if p, ok := canonicalParams[parts[2]]; ok {
			return parts[0] + "." + parts[1] + "." + p
		}
	}
	return lower
}

// Join builds a dotted key-path from its parts.
func Join(parts ...string) string {
	return strings.Join(parts, ".")
}

// Split breaks a dotted key-path into its parts.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ".")
}
