// Package constants provides shared constants for the blind-quote application.
package constants

// Financial constants
const (
	// GSTRate is the goods-and-services tax applied to every subtotal.
	GSTRate = 0.10

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DualPairSize is the number of dual-marked blinds sharing one dual bracket set.
	DualPairSize = 2
)

// Line item markers
const (
	// WinderHeavyDuty marks a blind fitted with a heavy-duty winder.
	WinderHeavyDuty = "HD"

	// DualMarker marks a blind that is paired on a dual bracket.
	DualMarker = "D"
)

// Product keys
const (
	// ProductRollerBlind is the primary product tab and must always be configured.
	ProductRollerBlind = "rollerBlind"
)

// Component keys used in the retail and F1 price tables.
const (
	ComponentWinder    = "winder"
	ComponentDual      = "dual"
	ComponentMotor     = "motor"
	ComponentRemote    = "remote"
	ComponentRemote1ch = "remote1ch"
	ComponentRemote16  = "remote16ch"
	ComponentCharger   = "charger"
	ComponentCord      = "cord"
	ComponentWifi      = "wifi"
)

// Fee types used in the surcharge table.
const (
	FeeDelivery = "delivery"
	FeeInstall  = "install"
	FeeRemoval  = "removal"
)

// F1 override identifiers.
const (
	OverrideRemote1ch = "remote1ch"
	OverrideCharger   = "charger"
	OverrideCord      = "cord"
)

// F2 value identifiers.
const (
	F2WifiQty     = "wifiQty"
	F2DeliveryQty = "deliveryQty"
	F2InstallQty  = "installQty"
	F2RemovalQty  = "removalQty"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON prints the full calculation result as JSON
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// EnvPrefix is the prefix viper uses for environment overrides.
	EnvPrefix = "BLINDQUOTE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the editor API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultStorePath is the default SQLite file for saved quotes.
	DefaultStorePath = "quotes.db"

	// DefaultDueDays is how long after the quote date a quote falls due when no
	// due date was entered.
	DefaultDueDays = 14
)
