package covlog

import (
	"github.com/rockbears/log"
)

const (
	// If you add a field constant, don't forget to add it in the log.RegisterField below
	Command  = log.Field("command")
	Tool     = log.Field("tool")
	Pattern  = log.Field("pattern")
	Artifact = log.Field("artifact")
)

func init() {
	log.RegisterField(
		Command,
		Tool,
		Pattern,
		Artifact,
	)
}
