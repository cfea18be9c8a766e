package main

import (
	"github.com/btcprim/btcprim/infrastructure/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.BPCT)
