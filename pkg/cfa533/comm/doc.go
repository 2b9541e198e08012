// Package comm provides the CFA533 packet link.
package comm

// The CFA533 talks a framed packet protocol over RS-232. Every frame is
//
//	type(1) length(1) data(length) crc(2, little endian)
//
// The top two bits of the type byte select the packet type (command,
// response, report, error) and the lower six bits carry the command
// identifier. The host sends commands, the module replies with a response
// or an error using the same identifier, and it may emit reports (keypad
// activity, temperature) at any time.
//
// Only one command is in flight at a time. Conn serializes callers with a
// command lock, correlates the reply by identifier and gives up after a
// timeout. Reports are fanned out to subscribers independently of any
// pending command.
//
// Producer: CFA533 module
// Consumer: host
