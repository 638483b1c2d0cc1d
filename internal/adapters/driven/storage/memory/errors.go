package memory

import "errors"

var (
	errTxDone      = errors.New("memory: transaction already finished")
	errMissingRepo = errors.New("memory: pull request references an unknown repository")
)
