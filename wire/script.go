package wire

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/btcprim/btcprim/util/binaryserializer"
	"github.com/pkg/errors"
)

// MaxScriptElementSize is the maximum number of bytes a single push may
// carry.
const MaxScriptElementSize = 520

// maxScriptPayload bounds the declared length of a script read from the
// wire. No script can be larger than a block.
const maxScriptPayload = 4000000

// CommandKind tags the variant held by a Command.
type CommandKind uint8

// The kinds of script commands.
const (
	// OpcodeCommand is a single non-push opcode byte.
	OpcodeCommand CommandKind = iota

	// PushDataCommand pushes a byte string.
	PushDataCommand

	// RawCoinbaseCommand holds a coinbase scriptSig payload, which is
	// arbitrary bytes outside the opcode grammar.
	RawCoinbaseCommand
)

func (k CommandKind) String() string {
	switch k {
	case OpcodeCommand:
		return "opcode"
	case PushDataCommand:
		return "push"
	case RawCoinbaseCommand:
		return "coinbase"
	}
	return fmt.Sprintf("CommandKind(%d)", uint8(k))
}

// Command is one element of a script. Build commands with NewOpcode,
// NewPushData and NewRawCoinbase so that a command can always be
// serialized.
type Command struct {
	kind   CommandKind
	opcode byte
	data   []byte

	// pushOp is the push opcode a parsed push was read with, so that a
	// non-minimal push re-serializes to the same bytes. Zero means the
	// shortest encoding.
	pushOp byte
}

// NewOpcode returns a bare opcode command. The push opcodes 0x01-0x4d can't
// stand alone and are rejected; use NewPushData for those.
func NewOpcode(op byte) (Command, error) {
	if op >= OpData1 && op <= OpPushData2 {
		return Command{}, errors.Errorf("opcode 0x%02x is a push and needs data", op)
	}
	return Command{kind: OpcodeCommand, opcode: op}, nil
}

// NewPushData returns a command pushing data, which must be between 1 and
// MaxScriptElementSize bytes long.
func NewPushData(data []byte) (Command, error) {
	if len(data) == 0 {
		return Command{}, errors.New("push data is empty; use opcode 0x00")
	}
	if len(data) > MaxScriptElementSize {
		return Command{}, errors.Errorf("too long a command: %d bytes, max %d",
			len(data), MaxScriptElementSize)
	}
	return Command{kind: PushDataCommand, data: append([]byte(nil), data...)}, nil
}

// NewRawCoinbase returns a raw coinbase payload command.
func NewRawCoinbase(payload []byte) Command {
	return Command{kind: RawCoinbaseCommand, data: append([]byte(nil), payload...)}
}

// Kind returns the variant of c.
func (c Command) Kind() CommandKind {
	return c.kind
}

// Opcode returns the opcode of an OpcodeCommand.
func (c Command) Opcode() byte {
	return c.opcode
}

// Data returns a copy of the bytes of a push or raw coinbase command.
func (c Command) Data() []byte {
	return append([]byte(nil), c.data...)
}

// Equal reports whether both commands have the same kind and content.
func (c Command) Equal(other Command) bool {
	return c.kind == other.kind && c.opcode == other.opcode && bytes.Equal(c.data, other.data)
}

// pushEncoding picks the push opcode for c: the one it was parsed with when
// that still fits, otherwise the shortest one.
func (c Command) pushEncoding() (byte, error) {
	length := len(c.data)
	if length > MaxScriptElementSize {
		return 0, errors.Errorf("too long a command: %d bytes, max %d", length, MaxScriptElementSize)
	}
	switch {
	case c.pushOp == OpPushData1 && length < 0x100:
		return OpPushData1, nil
	case c.pushOp == OpPushData2:
		return OpPushData2, nil
	case length <= OpData75:
		return byte(length), nil
	case length < 0x100:
		return OpPushData1, nil
	}
	return OpPushData2, nil
}

func (c Command) appendTo(buf []byte) ([]byte, error) {
	switch c.kind {
	case OpcodeCommand:
		return append(buf, c.opcode), nil

	case PushDataCommand:
		op, err := c.pushEncoding()
		if err != nil {
			return nil, err
		}
		buf = append(buf, op)
		switch op {
		case OpPushData1:
			buf = append(buf, byte(len(c.data)))
		case OpPushData2:
			buf = append(buf, byte(len(c.data)), byte(len(c.data)>>8))
		}
		return append(buf, c.data...), nil

	case RawCoinbaseCommand:
		return append(buf, c.data...), nil
	}
	return nil, errors.Errorf("unknown command kind %s", c.kind)
}

// Script is an ordered sequence of commands. A coinbase script holds exactly
// one RawCoinbaseCommand and nothing else.
type Script struct {
	commands []Command
}

// NewScript returns a script made of commands. A raw coinbase command may
// only appear alone.
func NewScript(commands ...Command) (*Script, error) {
	for _, command := range commands {
		if command.kind == RawCoinbaseCommand && len(commands) != 1 {
			return nil, errors.New("a raw coinbase command can't be mixed with other commands")
		}
	}
	return &Script{commands: append([]Command(nil), commands...)}, nil
}

// ParseScript reads a varint-length-prefixed script from r and splits it
// into commands.
func ParseScript(r io.Reader) (*Script, error) {
	payload, err := ReadVarBytes(r, maxScriptPayload, "script")
	if err != nil {
		return nil, err
	}
	return parseScriptPayload(payload)
}

// ParseScriptBytes parses a script payload which has no length prefix.
func ParseScriptBytes(payload []byte) (*Script, error) {
	return parseScriptPayload(payload)
}

func parseScriptPayload(payload []byte) (*Script, error) {
	var commands []Command
	r := bytes.NewReader(payload)
	for r.Len() > 0 {
		op, err := binaryserializer.Uint8(r)
		if err != nil {
			return nil, err
		}

		var length uint64
		switch {
		case op >= OpData1 && op <= OpData75:
			length = uint64(op)
		case op == OpPushData1:
			l, err := binaryserializer.Uint8(r)
			if err != nil {
				return nil, scriptOverrun(len(payload), "OP_PUSHDATA1 length")
			}
			length = uint64(l)
		case op == OpPushData2:
			l, err := binaryserializer.Uint16(r)
			if err != nil {
				return nil, scriptOverrun(len(payload), "OP_PUSHDATA2 length")
			}
			length = uint64(l)
		default:
			commands = append(commands, Command{kind: OpcodeCommand, opcode: op})
			continue
		}

		if length > MaxScriptElementSize {
			return nil, formatError("ParseScript", fmt.Sprintf(
				"too long a command: push of %d bytes, max %d", length, MaxScriptElementSize))
		}
		if length > uint64(r.Len()) {
			return nil, scriptOverrun(len(payload), fmt.Sprintf("push of %d bytes", length))
		}
		data, err := binaryserializer.Bytes(r, length)
		if err != nil {
			return nil, err
		}
		command := Command{kind: PushDataCommand, data: data}
		if op == OpPushData1 || op == OpPushData2 {
			command.pushOp = op
		}
		commands = append(commands, command)
	}
	return &Script{commands: commands}, nil
}

func scriptOverrun(declared int, what string) error {
	return formatError("ParseScript", fmt.Sprintf(
		"%s runs past the declared script length %d", what, declared))
}

// ParseCoinbaseScript reads a varint-length-prefixed coinbase scriptSig from
// r. The payload isn't split into commands.
func ParseCoinbaseScript(r io.Reader) (*Script, error) {
	payload, err := ReadVarBytes(r, maxScriptPayload, "coinbase script")
	if err != nil {
		return nil, err
	}
	return &Script{commands: []Command{{kind: RawCoinbaseCommand, data: payload}}}, nil
}

// Commands returns the commands of s.
func (s *Script) Commands() []Command {
	return append([]Command(nil), s.commands...)
}

// IsCoinbase returns true if s is a raw coinbase payload.
func (s *Script) IsCoinbase() bool {
	return len(s.commands) == 1 && s.commands[0].kind == RawCoinbaseCommand
}

// Payload returns the serialized commands of s without the length prefix.
func (s *Script) Payload() ([]byte, error) {
	var buf []byte
	for _, command := range s.commands {
		var err error
		buf, err = command.appendTo(buf)
		if err != nil {
			return nil, formatError("Script.Serialize", err.Error())
		}
	}
	return buf, nil
}

// Serialize writes s to w prefixed by its varint length. An empty script is
// the single byte 0x00.
func (s *Script) Serialize(w io.Writer) error {
	payload, err := s.Payload()
	if err != nil {
		return err
	}
	return WriteVarBytes(w, payload)
}

// Bytes returns the length-prefixed serialization of s.
func (s *Script) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := s.Serialize(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeSize returns the number of bytes Serialize would write. Commands
// can only be built within the push limits, so it panics if s somehow can't
// be serialized rather than report a size nothing would write.
func (s *Script) SerializeSize() int {
	payload, err := s.Payload()
	if err != nil {
		panic(errors.Wrap(err, "script can't be serialized"))
	}
	return VarIntSerializeSize(uint64(len(payload))) + len(payload)
}

// Append returns a new script holding the commands of s followed by those of
// other.
func (s *Script) Append(other *Script) (*Script, error) {
	commands := make([]Command, 0, len(s.commands)+len(other.commands))
	commands = append(commands, s.commands...)
	commands = append(commands, other.commands...)
	return NewScript(commands...)
}

// Equal reports whether both scripts hold the same commands.
func (s *Script) Equal(other *Script) bool {
	if len(s.commands) != len(other.commands) {
		return false
	}
	for i := range s.commands {
		if !s.commands[i].Equal(other.commands[i]) {
			return false
		}
	}
	return true
}

// CoinbaseHeight reads the block height a BIP34 coinbase payload starts
// with: a varint byte count followed by that many little-endian bytes.
func (s *Script) CoinbaseHeight() (uint64, error) {
	if !s.IsCoinbase() {
		return 0, errors.WithStack(ErrNotCoinbase)
	}
	r := bytes.NewReader(s.commands[0].data)
	length, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if length > 8 {
		return 0, formatError("CoinbaseHeight", fmt.Sprintf(
			"height of %d bytes doesn't fit in a uint64", length))
	}
	heightBytes, err := binaryserializer.Bytes(r, length)
	if err != nil {
		return 0, truncated("CoinbaseHeight", "height", err)
	}
	var height uint64
	for i := len(heightBytes) - 1; i >= 0; i-- {
		height = height<<8 | uint64(heightBytes[i])
	}
	return height, nil
}

// String returns the assembly form of s.
func (s *Script) String() string {
	return s.Asm(false)
}

// Asm renders s the way node software does: opcodes by name, pushes of up
// to four bytes as numbers and longer pushes as hex. With decodeSighash set,
// pushes holding a DER signature have their sighash byte shown as a suffix
// such as [ALL]. A raw coinbase renders as its payload hex.
func (s *Script) Asm(decodeSighash bool) string {
	if s.IsCoinbase() {
		return fmt.Sprintf("%x", s.commands[0].data)
	}
	decodeSighash = decodeSighash && !s.isUnspendable()
	parts := make([]string, 0, len(s.commands))
	for _, command := range s.commands {
		switch command.kind {
		case OpcodeCommand:
			parts = append(parts, OpcodeName(command.opcode))
		case PushDataCommand:
			parts = append(parts, pushAsm(command.data, decodeSighash))
		}
	}
	return strings.Join(parts, " ")
}

func (s *Script) isUnspendable() bool {
	return len(s.commands) > 0 && s.commands[0].kind == OpcodeCommand &&
		s.commands[0].opcode == OpReturn
}
