package command

const (
	JSONOutputFlag  = "json"
	GRPCAddressFlag = "grpc-address"
	LogLevelFlag    = "log-level"
)
