package version

var (
	AppName     = "LeottaFM"
	AppFullName = "LeottaFM Radio Bot"
	AppVersion  = "1.0.0"
)
