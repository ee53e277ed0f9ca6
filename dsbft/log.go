package dsbft

import logging "github.com/ipfs/go-log/v2"

// Logger is the package-level logger the protocol engine, the scheduler and
// the harness write to; the CLI driver sets its level. Per-round trace lines
// are logged at Debug;
// phase transitions and final decisions at Info; configuration rejections
// at Error.
var Logger = logging.Logger("dsbft")
