// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/landaverdend/btcwebtools/chainhash"
)

// An opcode defines the information related to a txscript opcode.  opfunc, if
// present, is the function to call to perform the opcode on the script.
// minStack is the number of items that must be on the data stack before the
// opcode runs.
type opcode struct {
	value    byte
	name     string
	minStack int
	opfunc   func(*opcode, *Engine) error
}


// These constants are the values of the official opcodes used on the btc wiki,
// in bitcoin core and in most if not all other references and software related
// to handling BTC scripts.
const (
	OP_0                   = 0x00 // 0
	OP_FALSE               = 0x00 // 0 - AKA OP_0
	OP_DATA_1              = 0x01 // 1
	OP_DATA_2              = 0x02 // 2
	OP_DATA_3              = 0x03 // 3
	OP_DATA_4              = 0x04 // 4
	OP_DATA_5              = 0x05 // 5
	OP_DATA_6              = 0x06 // 6
	OP_DATA_7              = 0x07 // 7
	OP_DATA_8              = 0x08 // 8
	OP_DATA_9              = 0x09 // 9
	OP_DATA_10             = 0x0a // 10
	OP_DATA_11             = 0x0b // 11
	OP_DATA_12             = 0x0c // 12
	OP_DATA_13             = 0x0d // 13
	OP_DATA_14             = 0x0e // 14
	OP_DATA_15             = 0x0f // 15
	OP_DATA_16             = 0x10 // 16
	OP_DATA_17             = 0x11 // 17
	OP_DATA_18             = 0x12 // 18
	OP_DATA_19             = 0x13 // 19
	OP_DATA_20             = 0x14 // 20
	OP_DATA_21             = 0x15 // 21
	OP_DATA_22             = 0x16 // 22
	OP_DATA_23             = 0x17 // 23
	OP_DATA_24             = 0x18 // 24
	OP_DATA_25             = 0x19 // 25
	OP_DATA_26             = 0x1a // 26
	OP_DATA_27             = 0x1b // 27
	OP_DATA_28             = 0x1c // 28
	OP_DATA_29             = 0x1d // 29
	OP_DATA_30             = 0x1e // 30
	OP_DATA_31             = 0x1f // 31
	OP_DATA_32             = 0x20 // 32
	OP_DATA_33             = 0x21 // 33
	OP_DATA_34             = 0x22 // 34
	OP_DATA_35             = 0x23 // 35
	OP_DATA_36             = 0x24 // 36
	OP_DATA_37             = 0x25 // 37
	OP_DATA_38             = 0x26 // 38
	OP_DATA_39             = 0x27 // 39
	OP_DATA_40             = 0x28 // 40
	OP_DATA_41             = 0x29 // 41
	OP_DATA_42             = 0x2a // 42
	OP_DATA_43             = 0x2b // 43
	OP_DATA_44             = 0x2c // 44
	OP_DATA_45             = 0x2d // 45
	OP_DATA_46             = 0x2e // 46
	OP_DATA_47             = 0x2f // 47
	OP_DATA_48             = 0x30 // 48
	OP_DATA_49             = 0x31 // 49
	OP_DATA_50             = 0x32 // 50
	OP_DATA_51             = 0x33 // 51
	OP_DATA_52             = 0x34 // 52
	OP_DATA_53             = 0x35 // 53
	OP_DATA_54             = 0x36 // 54
	OP_DATA_55             = 0x37 // 55
	OP_DATA_56             = 0x38 // 56
	OP_DATA_57             = 0x39 // 57
	OP_DATA_58             = 0x3a // 58
	OP_DATA_59             = 0x3b // 59
	OP_DATA_60             = 0x3c // 60
	OP_DATA_61             = 0x3d // 61
	OP_DATA_62             = 0x3e // 62
	OP_DATA_63             = 0x3f // 63
	OP_DATA_64             = 0x40 // 64
	OP_DATA_65             = 0x41 // 65
	OP_DATA_66             = 0x42 // 66
	OP_DATA_67             = 0x43 // 67
	OP_DATA_68             = 0x44 // 68
	OP_DATA_69             = 0x45 // 69
	OP_DATA_70             = 0x46 // 70
	OP_DATA_71             = 0x47 // 71
	OP_DATA_72             = 0x48 // 72
	OP_DATA_73             = 0x49 // 73
	OP_DATA_74             = 0x4a // 74
	OP_DATA_75             = 0x4b // 75
	OP_PUSHDATA1           = 0x4c // 76
	OP_PUSHDATA2           = 0x4d // 77
	OP_PUSHDATA4           = 0x4e // 78
	OP_1NEGATE             = 0x4f // 79
	OP_RESERVED            = 0x50 // 80
	OP_1                   = 0x51 // 81 - AKA OP_TRUE
	OP_TRUE                = 0x51 // 81
	OP_2                   = 0x52 // 82
	OP_3                   = 0x53 // 83
	OP_4                   = 0x54 // 84
	OP_5                   = 0x55 // 85
	OP_6                   = 0x56 // 86
	OP_7                   = 0x57 // 87
	OP_8                   = 0x58 // 88
	OP_9                   = 0x59 // 89
	OP_10                  = 0x5a // 90
	OP_11                  = 0x5b // 91
	OP_12                  = 0x5c // 92
	OP_13                  = 0x5d // 93
	OP_14                  = 0x5e // 94
	OP_15                  = 0x5f // 95
	OP_16                  = 0x60 // 96
	OP_NOP                 = 0x61 // 97
	OP_VER                 = 0x62 // 98
	OP_IF                  = 0x63 // 99
	OP_NOTIF               = 0x64 // 100
	OP_VERIF               = 0x65 // 101
	OP_VERNOTIF            = 0x66 // 102
	OP_ELSE                = 0x67 // 103
	OP_ENDIF               = 0x68 // 104
	OP_VERIFY              = 0x69 // 105
	OP_RETURN              = 0x6a // 106
	OP_TOALTSTACK          = 0x6b // 107
	OP_FROMALTSTACK        = 0x6c // 108
	OP_2DROP               = 0x6d // 109
	OP_2DUP                = 0x6e // 110
	OP_3DUP                = 0x6f // 111
	OP_2OVER               = 0x70 // 112
	OP_2ROT                = 0x71 // 113
	OP_2SWAP               = 0x72 // 114
	OP_IFDUP               = 0x73 // 115
	OP_DEPTH               = 0x74 // 116
	OP_DROP                = 0x75 // 117
	OP_DUP                 = 0x76 // 118
	OP_NIP                 = 0x77 // 119
	OP_OVER                = 0x78 // 120
	OP_PICK                = 0x79 // 121
	OP_ROLL                = 0x7a // 122
	OP_ROT                 = 0x7b // 123
	OP_SWAP                = 0x7c // 124
	OP_TUCK                = 0x7d // 125
	OP_CAT                 = 0x7e // 126
	OP_SUBSTR              = 0x7f // 127
	OP_LEFT                = 0x80 // 128
	OP_RIGHT               = 0x81 // 129
	OP_SIZE                = 0x82 // 130
	OP_INVERT              = 0x83 // 131
	OP_AND                 = 0x84 // 132
	OP_OR                  = 0x85 // 133
	OP_XOR                 = 0x86 // 134
	OP_EQUAL               = 0x87 // 135
	OP_EQUALVERIFY         = 0x88 // 136
	OP_RESERVED1           = 0x89 // 137
	OP_RESERVED2           = 0x8a // 138
	OP_1ADD                = 0x8b // 139
	OP_1SUB                = 0x8c // 140
	OP_2MUL                = 0x8d // 141
	OP_2DIV                = 0x8e // 142
	OP_NEGATE              = 0x8f // 143
	OP_ABS                 = 0x90 // 144
	OP_NOT                 = 0x91 // 145
	OP_0NOTEQUAL           = 0x92 // 146
	OP_ADD                 = 0x93 // 147
	OP_SUB                 = 0x94 // 148
	OP_MUL                 = 0x95 // 149
	OP_DIV                 = 0x96 // 150
	OP_MOD                 = 0x97 // 151
	OP_LSHIFT              = 0x98 // 152
	OP_RSHIFT              = 0x99 // 153
	OP_BOOLAND             = 0x9a // 154
	OP_BOOLOR              = 0x9b // 155
	OP_NUMEQUAL            = 0x9c // 156
	OP_NUMEQUALVERIFY      = 0x9d // 157
	OP_NUMNOTEQUAL         = 0x9e // 158
	OP_LESSTHAN            = 0x9f // 159
	OP_GREATERTHAN         = 0xa0 // 160
	OP_LESSTHANOREQUAL     = 0xa1 // 161
	OP_GREATERTHANOREQUAL  = 0xa2 // 162
	OP_MIN                 = 0xa3 // 163
	OP_MAX                 = 0xa4 // 164
	OP_WITHIN              = 0xa5 // 165
	OP_RIPEMD160           = 0xa6 // 166
	OP_SHA1                = 0xa7 // 167
	OP_SHA256              = 0xa8 // 168
	OP_HASH160             = 0xa9 // 169
	OP_HASH256             = 0xaa // 170
	OP_CODESEPARATOR       = 0xab // 171
	OP_CHECKSIG            = 0xac // 172
	OP_CHECKSIGVERIFY      = 0xad // 173
	OP_CHECKMULTISIG       = 0xae // 174
	OP_CHECKMULTISIGVERIFY = 0xaf // 175
	OP_NOP1                = 0xb0 // 176
	OP_NOP2                = 0xb1 // 177
	OP_CHECKLOCKTIMEVERIFY = 0xb1 // 177 - AKA OP_NOP2
	OP_NOP3                = 0xb2 // 178
	OP_CHECKSEQUENCEVERIFY = 0xb2 // 178 - AKA OP_NOP3
	OP_NOP4                = 0xb3 // 179
	OP_NOP5                = 0xb4 // 180
	OP_NOP6                = 0xb5 // 181
	OP_NOP7                = 0xb6 // 182
	OP_NOP8                = 0xb7 // 183
	OP_NOP9                = 0xb8 // 184
	OP_NOP10               = 0xb9 // 185
)

// opcodeArray holds details about all possible opcodes such as the number of
// stack items the opcode consumes, its human-readable name, and the handler
// function.
var opcodeArray = [256]opcode{
	// Data push opcodes.
	OP_FALSE:     {OP_FALSE, "OP_0", 0, opcodeFalse},
	OP_DATA_1:    {OP_DATA_1, "OP_DATA_1", 0, opcodePushNext},
	OP_DATA_2:    {OP_DATA_2, "OP_DATA_2", 0, opcodePushNext},
	OP_DATA_3:    {OP_DATA_3, "OP_DATA_3", 0, opcodePushNext},
	OP_DATA_4:    {OP_DATA_4, "OP_DATA_4", 0, opcodePushNext},
	OP_DATA_5:    {OP_DATA_5, "OP_DATA_5", 0, opcodePushNext},
	OP_DATA_6:    {OP_DATA_6, "OP_DATA_6", 0, opcodePushNext},
	OP_DATA_7:    {OP_DATA_7, "OP_DATA_7", 0, opcodePushNext},
	OP_DATA_8:    {OP_DATA_8, "OP_DATA_8", 0, opcodePushNext},
	OP_DATA_9:    {OP_DATA_9, "OP_DATA_9", 0, opcodePushNext},
	OP_DATA_10:   {OP_DATA_10, "OP_DATA_10", 0, opcodePushNext},
	OP_DATA_11:   {OP_DATA_11, "OP_DATA_11", 0, opcodePushNext},
	OP_DATA_12:   {OP_DATA_12, "OP_DATA_12", 0, opcodePushNext},
	OP_DATA_13:   {OP_DATA_13, "OP_DATA_13", 0, opcodePushNext},
	OP_DATA_14:   {OP_DATA_14, "OP_DATA_14", 0, opcodePushNext},
	OP_DATA_15:   {OP_DATA_15, "OP_DATA_15", 0, opcodePushNext},
	OP_DATA_16:   {OP_DATA_16, "OP_DATA_16", 0, opcodePushNext},
	OP_DATA_17:   {OP_DATA_17, "OP_DATA_17", 0, opcodePushNext},
	OP_DATA_18:   {OP_DATA_18, "OP_DATA_18", 0, opcodePushNext},
	OP_DATA_19:   {OP_DATA_19, "OP_DATA_19", 0, opcodePushNext},
	OP_DATA_20:   {OP_DATA_20, "OP_DATA_20", 0, opcodePushNext},
	OP_DATA_21:   {OP_DATA_21, "OP_DATA_21", 0, opcodePushNext},
	OP_DATA_22:   {OP_DATA_22, "OP_DATA_22", 0, opcodePushNext},
	OP_DATA_23:   {OP_DATA_23, "OP_DATA_23", 0, opcodePushNext},
	OP_DATA_24:   {OP_DATA_24, "OP_DATA_24", 0, opcodePushNext},
	OP_DATA_25:   {OP_DATA_25, "OP_DATA_25", 0, opcodePushNext},
	OP_DATA_26:   {OP_DATA_26, "OP_DATA_26", 0, opcodePushNext},
	OP_DATA_27:   {OP_DATA_27, "OP_DATA_27", 0, opcodePushNext},
	OP_DATA_28:   {OP_DATA_28, "OP_DATA_28", 0, opcodePushNext},
	OP_DATA_29:   {OP_DATA_29, "OP_DATA_29", 0, opcodePushNext},
	OP_DATA_30:   {OP_DATA_30, "OP_DATA_30", 0, opcodePushNext},
	OP_DATA_31:   {OP_DATA_31, "OP_DATA_31", 0, opcodePushNext},
	OP_DATA_32:   {OP_DATA_32, "OP_DATA_32", 0, opcodePushNext},
	OP_DATA_33:   {OP_DATA_33, "OP_DATA_33", 0, opcodePushNext},
	OP_DATA_34:   {OP_DATA_34, "OP_DATA_34", 0, opcodePushNext},
	OP_DATA_35:   {OP_DATA_35, "OP_DATA_35", 0, opcodePushNext},
	OP_DATA_36:   {OP_DATA_36, "OP_DATA_36", 0, opcodePushNext},
	OP_DATA_37:   {OP_DATA_37, "OP_DATA_37", 0, opcodePushNext},
	OP_DATA_38:   {OP_DATA_38, "OP_DATA_38", 0, opcodePushNext},
	OP_DATA_39:   {OP_DATA_39, "OP_DATA_39", 0, opcodePushNext},
	OP_DATA_40:   {OP_DATA_40, "OP_DATA_40", 0, opcodePushNext},
	OP_DATA_41:   {OP_DATA_41, "OP_DATA_41", 0, opcodePushNext},
	OP_DATA_42:   {OP_DATA_42, "OP_DATA_42", 0, opcodePushNext},
	OP_DATA_43:   {OP_DATA_43, "OP_DATA_43", 0, opcodePushNext},
	OP_DATA_44:   {OP_DATA_44, "OP_DATA_44", 0, opcodePushNext},
	OP_DATA_45:   {OP_DATA_45, "OP_DATA_45", 0, opcodePushNext},
	OP_DATA_46:   {OP_DATA_46, "OP_DATA_46", 0, opcodePushNext},
	OP_DATA_47:   {OP_DATA_47, "OP_DATA_47", 0, opcodePushNext},
	OP_DATA_48:   {OP_DATA_48, "OP_DATA_48", 0, opcodePushNext},
	OP_DATA_49:   {OP_DATA_49, "OP_DATA_49", 0, opcodePushNext},
	OP_DATA_50:   {OP_DATA_50, "OP_DATA_50", 0, opcodePushNext},
	OP_DATA_51:   {OP_DATA_51, "OP_DATA_51", 0, opcodePushNext},
	OP_DATA_52:   {OP_DATA_52, "OP_DATA_52", 0, opcodePushNext},
	OP_DATA_53:   {OP_DATA_53, "OP_DATA_53", 0, opcodePushNext},
	OP_DATA_54:   {OP_DATA_54, "OP_DATA_54", 0, opcodePushNext},
	OP_DATA_55:   {OP_DATA_55, "OP_DATA_55", 0, opcodePushNext},
	OP_DATA_56:   {OP_DATA_56, "OP_DATA_56", 0, opcodePushNext},
	OP_DATA_57:   {OP_DATA_57, "OP_DATA_57", 0, opcodePushNext},
	OP_DATA_58:   {OP_DATA_58, "OP_DATA_58", 0, opcodePushNext},
	OP_DATA_59:   {OP_DATA_59, "OP_DATA_59", 0, opcodePushNext},
	OP_DATA_60:   {OP_DATA_60, "OP_DATA_60", 0, opcodePushNext},
	OP_DATA_61:   {OP_DATA_61, "OP_DATA_61", 0, opcodePushNext},
	OP_DATA_62:   {OP_DATA_62, "OP_DATA_62", 0, opcodePushNext},
	OP_DATA_63:   {OP_DATA_63, "OP_DATA_63", 0, opcodePushNext},
	OP_DATA_64:   {OP_DATA_64, "OP_DATA_64", 0, opcodePushNext},
	OP_DATA_65:   {OP_DATA_65, "OP_DATA_65", 0, opcodePushNext},
	OP_DATA_66:   {OP_DATA_66, "OP_DATA_66", 0, opcodePushNext},
	OP_DATA_67:   {OP_DATA_67, "OP_DATA_67", 0, opcodePushNext},
	OP_DATA_68:   {OP_DATA_68, "OP_DATA_68", 0, opcodePushNext},
	OP_DATA_69:   {OP_DATA_69, "OP_DATA_69", 0, opcodePushNext},
	OP_DATA_70:   {OP_DATA_70, "OP_DATA_70", 0, opcodePushNext},
	OP_DATA_71:   {OP_DATA_71, "OP_DATA_71", 0, opcodePushNext},
	OP_DATA_72:   {OP_DATA_72, "OP_DATA_72", 0, opcodePushNext},
	OP_DATA_73:   {OP_DATA_73, "OP_DATA_73", 0, opcodePushNext},
	OP_DATA_74:   {OP_DATA_74, "OP_DATA_74", 0, opcodePushNext},
	OP_DATA_75:   {OP_DATA_75, "OP_DATA_75", 0, opcodePushNext},
	OP_PUSHDATA1: {OP_PUSHDATA1, "OP_PUSHDATA1", 0, opcodeNop},
	OP_PUSHDATA2: {OP_PUSHDATA2, "OP_PUSHDATA2", 0, opcodeNop},
	OP_PUSHDATA4: {OP_PUSHDATA4, "OP_PUSHDATA4", 0, opcodeNop},
	OP_1NEGATE:   {OP_1NEGATE, "OP_1NEGATE", 0, opcode1Negate},
	OP_RESERVED:  {OP_RESERVED, "OP_RESERVED", 0, opcodeReserved},
	OP_TRUE:      {OP_TRUE, "OP_1", 0, opcodeN},
	OP_2:         {OP_2, "OP_2", 0, opcodeN},
	OP_3:         {OP_3, "OP_3", 0, opcodeN},
	OP_4:         {OP_4, "OP_4", 0, opcodeN},
	OP_5:         {OP_5, "OP_5", 0, opcodeN},
	OP_6:         {OP_6, "OP_6", 0, opcodeN},
	OP_7:         {OP_7, "OP_7", 0, opcodeN},
	OP_8:         {OP_8, "OP_8", 0, opcodeN},
	OP_9:         {OP_9, "OP_9", 0, opcodeN},
	OP_10:        {OP_10, "OP_10", 0, opcodeN},
	OP_11:        {OP_11, "OP_11", 0, opcodeN},
	OP_12:        {OP_12, "OP_12", 0, opcodeN},
	OP_13:        {OP_13, "OP_13", 0, opcodeN},
	OP_14:        {OP_14, "OP_14", 0, opcodeN},
	OP_15:        {OP_15, "OP_15", 0, opcodeN},
	OP_16:        {OP_16, "OP_16", 0, opcodeN},

	// Control opcodes.
	OP_NOP:      {OP_NOP, "OP_NOP", 0, opcodeNop},
	OP_VER:      {OP_VER, "OP_VER", 0, opcodeReserved},
	OP_IF:       {OP_IF, "OP_IF", 1, opcodeIf},
	OP_NOTIF:    {OP_NOTIF, "OP_NOTIF", 1, opcodeNotIf},
	OP_VERIF:    {OP_VERIF, "OP_VERIF", 0, opcodeReserved},
	OP_VERNOTIF: {OP_VERNOTIF, "OP_VERNOTIF", 0, opcodeReserved},
	OP_ELSE:     {OP_ELSE, "OP_ELSE", 0, opcodeElse},
	OP_ENDIF:    {OP_ENDIF, "OP_ENDIF", 0, opcodeEndif},
	OP_VERIFY:   {OP_VERIFY, "OP_VERIFY", 1, opcodeVerify},
	OP_RETURN:   {OP_RETURN, "OP_RETURN", 0, opcodeReturn},

	// Stack opcodes.
	OP_TOALTSTACK:   {OP_TOALTSTACK, "OP_TOALTSTACK", 1, opcodeToAltStack},
	OP_FROMALTSTACK: {OP_FROMALTSTACK, "OP_FROMALTSTACK", 0, opcodeFromAltStack},
	OP_2DROP:        {OP_2DROP, "OP_2DROP", 2, opcode2Drop},
	OP_2DUP:         {OP_2DUP, "OP_2DUP", 2, opcode2Dup},
	OP_3DUP:         {OP_3DUP, "OP_3DUP", 3, opcode3Dup},
	OP_2OVER:        {OP_2OVER, "OP_2OVER", 4, opcode2Over},
	OP_2ROT:         {OP_2ROT, "OP_2ROT", 6, opcode2Rot},
	OP_2SWAP:        {OP_2SWAP, "OP_2SWAP", 4, opcode2Swap},
	OP_IFDUP:        {OP_IFDUP, "OP_IFDUP", 1, opcodeIfDup},
	OP_DEPTH:        {OP_DEPTH, "OP_DEPTH", 0, opcodeDepth},
	OP_DROP:         {OP_DROP, "OP_DROP", 1, opcodeDrop},
	OP_DUP:          {OP_DUP, "OP_DUP", 1, opcodeDup},
	OP_NIP:          {OP_NIP, "OP_NIP", 2, opcodeNip},
	OP_OVER:         {OP_OVER, "OP_OVER", 2, opcodeOver},
	OP_PICK:         {OP_PICK, "OP_PICK", 2, opcodePick},
	OP_ROLL:         {OP_ROLL, "OP_ROLL", 2, opcodeRoll},
	OP_ROT:          {OP_ROT, "OP_ROT", 3, opcodeRot},
	OP_SWAP:         {OP_SWAP, "OP_SWAP", 2, opcodeSwap},
	OP_TUCK:         {OP_TUCK, "OP_TUCK", 2, opcodeTuck},

	// Splice opcodes.
	OP_CAT:    {OP_CAT, "OP_CAT", 0, opcodeDisabled},
	OP_SUBSTR: {OP_SUBSTR, "OP_SUBSTR", 0, opcodeDisabled},
	OP_LEFT:   {OP_LEFT, "OP_LEFT", 0, opcodeDisabled},
	OP_RIGHT:  {OP_RIGHT, "OP_RIGHT", 0, opcodeDisabled},
	OP_SIZE:   {OP_SIZE, "OP_SIZE", 1, opcodeSize},

	// Bitwise logic opcodes.
	OP_INVERT:      {OP_INVERT, "OP_INVERT", 0, opcodeDisabled},
	OP_AND:         {OP_AND, "OP_AND", 0, opcodeDisabled},
	OP_OR:          {OP_OR, "OP_OR", 0, opcodeDisabled},
	OP_XOR:         {OP_XOR, "OP_XOR", 0, opcodeDisabled},
	OP_EQUAL:       {OP_EQUAL, "OP_EQUAL", 2, opcodeEqual},
	OP_EQUALVERIFY: {OP_EQUALVERIFY, "OP_EQUALVERIFY", 2, opcodeEqualVerify},
	OP_RESERVED1:   {OP_RESERVED1, "OP_RESERVED1", 0, opcodeReserved},
	OP_RESERVED2:   {OP_RESERVED2, "OP_RESERVED2", 0, opcodeReserved},

	// Numeric related opcodes.
	OP_1ADD:               {OP_1ADD, "OP_1ADD", 1, opcode1Add},
	OP_1SUB:               {OP_1SUB, "OP_1SUB", 1, opcode1Sub},
	OP_2MUL:               {OP_2MUL, "OP_2MUL", 0, opcodeDisabled},
	OP_2DIV:               {OP_2DIV, "OP_2DIV", 0, opcodeDisabled},
	OP_NEGATE:             {OP_NEGATE, "OP_NEGATE", 1, opcodeNegate},
	OP_ABS:                {OP_ABS, "OP_ABS", 1, opcodeAbs},
	OP_NOT:                {OP_NOT, "OP_NOT", 1, opcodeNot},
	OP_0NOTEQUAL:          {OP_0NOTEQUAL, "OP_0NOTEQUAL", 1, opcode0NotEqual},
	OP_ADD:                {OP_ADD, "OP_ADD", 2, opcodeAdd},
	OP_SUB:                {OP_SUB, "OP_SUB", 2, opcodeSub},
	OP_MUL:                {OP_MUL, "OP_MUL", 0, opcodeDisabled},
	OP_DIV:                {OP_DIV, "OP_DIV", 0, opcodeDisabled},
	OP_MOD:                {OP_MOD, "OP_MOD", 0, opcodeDisabled},
	OP_LSHIFT:             {OP_LSHIFT, "OP_LSHIFT", 0, opcodeDisabled},
	OP_RSHIFT:             {OP_RSHIFT, "OP_RSHIFT", 0, opcodeDisabled},
	OP_BOOLAND:            {OP_BOOLAND, "OP_BOOLAND", 2, opcodeBoolAnd},
	OP_BOOLOR:             {OP_BOOLOR, "OP_BOOLOR", 2, opcodeBoolOr},
	OP_NUMEQUAL:           {OP_NUMEQUAL, "OP_NUMEQUAL", 2, opcodeNumEqual},
	OP_NUMEQUALVERIFY:     {OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", 2, opcodeNumEqualVerify},
	OP_NUMNOTEQUAL:        {OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", 2, opcodeNumNotEqual},
	OP_LESSTHAN:           {OP_LESSTHAN, "OP_LESSTHAN", 2, opcodeLessThan},
	OP_GREATERTHAN:        {OP_GREATERTHAN, "OP_GREATERTHAN", 2, opcodeGreaterThan},
	OP_LESSTHANOREQUAL:    {OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", 2, opcodeLessThanOrEqual},
	OP_GREATERTHANOREQUAL: {OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", 2, opcodeGreaterThanOrEqual},
	OP_MIN:                {OP_MIN, "OP_MIN", 2, opcodeMin},
	OP_MAX:                {OP_MAX, "OP_MAX", 2, opcodeMax},
	OP_WITHIN:             {OP_WITHIN, "OP_WITHIN", 3, opcodeWithin},

	// Crypto opcodes.
	OP_RIPEMD160:           {OP_RIPEMD160, "OP_RIPEMD160", 1, opcodeRipemd160},
	OP_SHA1:                {OP_SHA1, "OP_SHA1", 1, opcodeSha1},
	OP_SHA256:              {OP_SHA256, "OP_SHA256", 1, opcodeSha256},
	OP_HASH160:             {OP_HASH160, "OP_HASH160", 1, opcodeHash160},
	OP_HASH256:             {OP_HASH256, "OP_HASH256", 1, opcodeHash256},
	OP_CODESEPARATOR:       {OP_CODESEPARATOR, "OP_CODESEPARATOR", 0, opcodeCodeSeparator},
	OP_CHECKSIG:            {OP_CHECKSIG, "OP_CHECKSIG", 2, opcodeCheckSig},
	OP_CHECKSIGVERIFY:      {OP_CHECKSIGVERIFY, "OP_CHECKSIGVERIFY", 2, opcodeCheckSigVerify},
	OP_CHECKMULTISIG:       {OP_CHECKMULTISIG, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig},
	OP_CHECKMULTISIGVERIFY: {OP_CHECKMULTISIGVERIFY, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify},

	// Reserved and lock-time opcodes.
	OP_NOP1:                {OP_NOP1, "OP_NOP1", 0, opcodeNop},
	OP_CHECKLOCKTIMEVERIFY: {OP_CHECKLOCKTIMEVERIFY, "OP_CHECKLOCKTIMEVERIFY", 1, opcodeCheckLockTimeVerify},
	OP_CHECKSEQUENCEVERIFY: {OP_CHECKSEQUENCEVERIFY, "OP_CHECKSEQUENCEVERIFY", 1, opcodeCheckSequenceVerify},
	OP_NOP4:                {OP_NOP4, "OP_NOP4", 0, opcodeNop},
	OP_NOP5:                {OP_NOP5, "OP_NOP5", 0, opcodeNop},
	OP_NOP6:                {OP_NOP6, "OP_NOP6", 0, opcodeNop},
	OP_NOP7:                {OP_NOP7, "OP_NOP7", 0, opcodeNop},
	OP_NOP8:                {OP_NOP8, "OP_NOP8", 0, opcodeNop},
	OP_NOP9:                {OP_NOP9, "OP_NOP9", 0, opcodeNop},
	OP_NOP10:               {OP_NOP10, "OP_NOP10", 0, opcodeNop},

	// Opcodes 0xba through 0xff are undefined and left zero-valued.
}

// opcodeArrayRef is used to break initialization cycles between the opcode
// table and the handlers that parse scripts.
var opcodeArrayRef *[256]opcode

// OpcodeByName is a map that can be used to lookup an opcode by its
// human-readable name (OP_CHECKMULTISIG, OP_CHECKSIG, etc).
var OpcodeByName = make(map[string]byte)

func init() {
	opcodeArrayRef = &opcodeArray

	// Initialize the opcode name to value map using the contents of the
	// opcode array.  Also add entries for "OP_FALSE", "OP_TRUE", and
	// "OP_NOP2" since they are aliases for "OP_0", "OP_1",
	// and "OP_CHECKLOCKTIMEVERIFY" respectively.
	for _, op := range opcodeArray {
		if op.name != "" {
			OpcodeByName[op.name] = op.value
		}
	}
	OpcodeByName["OP_FALSE"] = OP_FALSE
	OpcodeByName["OP_TRUE"] = OP_TRUE
	OpcodeByName["OP_NOP2"] = OP_CHECKLOCKTIMEVERIFY
	OpcodeByName["OP_NOP3"] = OP_CHECKSEQUENCEVERIFY
}

// opcodeName returns the mnemonic for op, or OP_UNKNOWN<n> for values the
// table does not define.
func opcodeName(op byte) string {
	if name := opcodeArrayRef[op].name; name != "" {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN%d", op)
}

// isKnownOpcode reports whether op is defined.
func isKnownOpcode(op byte) bool {
	return opcodeArrayRef[op].name != ""
}

// opcodeOnelineRepls defines opcode names which are replaced when doing a
// one-line disassembly.  This is done to match the output of the reference
// implementation while not changing the opcode names in the nicer full
// disassembly.
var opcodeOnelineRepls = map[string]string{
	"OP_1NEGATE": "-1",
	"OP_0":       "0",
	"OP_1":       "1",
	"OP_2":       "2",
	"OP_3":       "3",
	"OP_4":       "4",
	"OP_5":       "5",
	"OP_6":       "6",
	"OP_7":       "7",
	"OP_8":       "8",
	"OP_9":       "9",
	"OP_10":      "10",
	"OP_11":      "11",
	"OP_12":      "12",
	"OP_13":      "13",
	"OP_14":      "14",
	"OP_15":      "15",
	"OP_16":      "16",
}

// *******************************************
// Opcode implementation functions start here.
// *******************************************

// opcodeDisabled is a common handler for disabled opcodes.  It returns an
// appropriate error indicating the opcode is disabled.
func opcodeDisabled(op *opcode, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
	return scriptError(ErrDisabledOpcode, str)
}

// opcodeReserved is a common handler for all reserved opcodes.  It returns an
// appropriate error indicating the opcode is reserved.
func opcodeReserved(op *opcode, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
	return scriptError(ErrReservedOpcode, str)
}

// opcodeFalse pushes an empty array to the data stack to represent false.
func opcodeFalse(op *opcode, vm *Engine) error {
	vm.dstack.PushByteArray(nil)
	return nil
}

// opcodePushNext handles a push-length opcode kept as its own command.  The
// data command that follows is pushed here and the engine skips it.
func opcodePushNext(op *opcode, vm *Engine) error {
	next := vm.pc + 1
	if next >= vm.script.Len() || !vm.script.cmds[next].isData {
		str := fmt.Sprintf("opcode %s at command %d is not followed by "+
			"data", op.name, vm.pc)
		return scriptError(ErrPushLengthMismatch, str)
	}

	data := vm.script.cmds[next].Data
	if len(data) != int(op.value) {
		str := fmt.Sprintf("opcode %s at command %d requires %d bytes, "+
			"but the following data is %d bytes", op.name, vm.pc,
			op.value, len(data))
		return scriptError(ErrPushLengthMismatch, str)
	}

	vm.dstack.PushByteArray(data)
	return nil
}

// opcode1Negate pushes -1, encoded as a number, to the data stack.
func opcode1Negate(op *opcode, vm *Engine) error {
	vm.dstack.PushInt(-1)
	return nil
}

// opcodeN is a common handler for the small integer data push opcodes.  It
// pushes the numeric value the opcode represents (which will be from 1 to 16)
// onto the data stack.
func opcodeN(op *opcode, vm *Engine) error {
	// The opcodes are all defined consecutively, so the numeric value is
	// the difference.
	vm.dstack.PushInt(int64(op.value - (OP_1 - 1)))
	return nil
}

// opcodeNop is a common handler for the NOP family of opcodes and for the
// OP_PUSHDATA opcodes kept for display, whose data was already materialized
// by the parser.
func opcodeNop(op *opcode, vm *Engine) error {
	return nil
}

// opcodeIf treats the top item on the data stack as a boolean and removes it.
// When it is an encoded zero, execution continues after the matching OP_ELSE
// or at the matching OP_ENDIF.
//
// Only an empty item or a single zero byte count as false here.
//
// Data stack transformation: [... bool] -> [...]
func opcodeIf(op *opcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if isEncodedZero(so) {
		return vm.jump()
	}
	return nil
}

// opcodeNotIf is the inverse of opcodeIf: the branch is skipped when the top
// item is not an encoded zero.
//
// Data stack transformation: [... bool] -> [...]
func opcodeNotIf(op *opcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if !isEncodedZero(so) {
		return vm.jump()
	}
	return nil
}

// opcodeElse is only reached by falling through the end of a taken OP_IF
// branch, so it unconditionally skips to the matching OP_ENDIF.
func opcodeElse(op *opcode, vm *Engine) error {
	return vm.jump()
}

// opcodeEndif marks the end of a conditional block.  The jump table already
// paired it, so there is nothing to do at run time.
func opcodeEndif(op *opcode, vm *Engine) error {
	return nil
}

// abstractVerify examines the top item on the data stack as a boolean value
// and verifies it evaluates to true.  An error is returned either when there
// is no item on the stack or when that item evaluates to false.  In the latter
// case where the verification fails specifically due to the top item
// evaluating to false, the returned error will use the passed error code.
func abstractVerify(op *opcode, vm *Engine, c ErrorCode) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}

	if !verified {
		str := fmt.Sprintf("%s failed", op.name)
		return scriptError(c, str)
	}
	return nil
}

// opcodeVerify examines the top item on the data stack as a boolean value and
// verifies it evaluates to true.  An error is returned if it does not.
func opcodeVerify(op *opcode, vm *Engine) error {
	return abstractVerify(op, vm, ErrVerify)
}

// opcodeReturn returns an appropriate error since it is always an error to
// return early from a script.
func opcodeReturn(op *opcode, vm *Engine) error {
	return scriptError(ErrEarlyReturn, "script returned early")
}

// verifyLockTime is a helper function used to validate locktimes.
func verifyLockTime(txLockTime, threshold, lockTime int64) error {
	// The lockTimes in both the script and transaction must be of the same
	// type.
	if !((txLockTime < threshold && lockTime < threshold) ||
		(txLockTime >= threshold && lockTime >= threshold)) {
		str := fmt.Sprintf("mismatched locktime types -- tx locktime "+
			"%d, stack locktime %d", txLockTime, lockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	if lockTime > txLockTime {
		str := fmt.Sprintf("locktime requirement not satisfied -- "+
			"locktime is greater than the transaction locktime: "+
			"%d > %d", lockTime, txLockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	return nil
}

// peekLockTime returns the top stack item as a lock time.  Lock times may
// be up to five bytes and must not be negative.
func peekLockTime(vm *Engine) (int64, error) {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return 0, err
	}
	if len(so) > 5 {
		str := fmt.Sprintf("lock time %x exceeds the max 5 byte "+
			"encoding", so)
		return 0, scriptError(ErrNumberTooBig, str)
	}

	lockTime, err := DecodeNumber(so)
	if err != nil {
		return 0, err
	}
	if lockTime < 0 {
		str := fmt.Sprintf("negative lock time: %d", lockTime)
		return 0, scriptError(ErrUnsatisfiedLockTime, str)
	}
	return lockTime, nil
}

// opcodeCheckLockTimeVerify compares the top item on the data stack to the
// LockTime field of the transaction containing the script signature
// validating if the transaction outputs are spendable yet.  The stack item
// is left in place.
func opcodeCheckLockTimeVerify(op *opcode, vm *Engine) error {
	if err := vm.requireTx(op); err != nil {
		return err
	}

	lockTime, err := peekLockTime(vm)
	if err != nil {
		return err
	}

	return verifyLockTime(int64(vm.txCtx.Tx.LockTime), LockTimeThreshold,
		lockTime)
}

// opcodeCheckSequenceVerify compares the top item on the data stack to the
// sequence number of the input being evaluated.  The transaction must be
// version 2 or later.  The stack item is left in place.
func opcodeCheckSequenceVerify(op *opcode, vm *Engine) error {
	if err := vm.requireTx(op); err != nil {
		return err
	}

	sequence, err := peekLockTime(vm)
	if err != nil {
		return err
	}

	tx := vm.txCtx.Tx
	if tx.Version < 2 {
		str := fmt.Sprintf("invalid transaction version: %d",
			tx.Version)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	txSequence := int64(tx.TxIn[vm.txCtx.InputIndex].Sequence)
	return verifyLockTime(txSequence, LockTimeThreshold, sequence)
}

// opcodeToAltStack removes the top item from the main data stack and pushes it
// onto the alternate data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2 y3 x3]
func opcodeToAltStack(op *opcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)

	return nil
}

// opcodeFromAltStack removes the top item from the alternate data stack and
// pushes it onto the main data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 y3]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2]
func opcodeFromAltStack(op *opcode, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)

	return nil
}

// opcode2Drop removes the top 2 items from the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1]
func opcode2Drop(op *opcode, vm *Engine) error {
	return vm.dstack.DropN(2)
}

// opcode2Dup duplicates the top 2 items on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x2 x3]
func opcode2Dup(op *opcode, vm *Engine) error {
	return vm.dstack.DupN(2)
}

// opcode3Dup duplicates the top 3 items on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x1 x2 x3]
func opcode3Dup(op *opcode, vm *Engine) error {
	return vm.dstack.DupN(3)
}

// opcode2Over duplicates the 2 items before the top 2 items on the data stack.
//
// Stack transformation: [... x1 x2 x3 x4] -> [... x1 x2 x3 x4 x1 x2]
func opcode2Over(op *opcode, vm *Engine) error {
	return vm.dstack.OverN(2)
}

// opcode2Rot rotates the top 6 items on the data stack to the left twice.
//
// Stack transformation: [... x1 x2 x3 x4 x5 x6] -> [... x3 x4 x5 x6 x1 x2]
func opcode2Rot(op *opcode, vm *Engine) error {
	return vm.dstack.RotN(2)
}

// opcode2Swap swaps the top 2 items on the data stack with the 2 that come
// before them.
//
// Stack transformation: [... x1 x2 x3 x4] -> [... x3 x4 x1 x2]
func opcode2Swap(op *opcode, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

// opcodeIfDup duplicates the top item of the stack if it is not zero.
//
// Stack transformation (x1==0): [... x1] -> [... x1]
// Stack transformation (x1!=0): [... x1] -> [... x1 x1]
func opcodeIfDup(op *opcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	// Push copy of data iff it isn't zero
	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}

	return nil
}

// opcodeDepth pushes the depth of the data stack prior to executing this
// opcode, encoded as a number, onto the data stack.
//
// Stack transformation: [...] -> [... <num of items on the stack>]
// Example with 2 items: [x1 x2] -> [x1 x2 2]
// Example with 3 items: [x1 x2 x3] -> [x1 x2 x3 3]
func opcodeDepth(op *opcode, vm *Engine) error {
	vm.dstack.PushInt(int64(vm.dstack.Depth()))
	return nil
}

// opcodeDrop removes the top item from the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2]
func opcodeDrop(op *opcode, vm *Engine) error {
	return vm.dstack.DropN(1)
}

// opcodeDup duplicates the top item on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x3]
func opcodeDup(op *opcode, vm *Engine) error {
	return vm.dstack.DupN(1)
}

// opcodeNip removes the item before the top item on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x3]
func opcodeNip(op *opcode, vm *Engine) error {
	return vm.dstack.NipN(1)
}

// opcodeOver duplicates the item before the top item on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x2]
func opcodeOver(op *opcode, vm *Engine) error {
	return vm.dstack.OverN(1)
}

// popIndex pops the top item as a stack index for OP_PICK and OP_ROLL.
func popIndex(op *opcode, vm *Engine) (int, error) {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return 0, err
	}
	if val < 0 {
		str := fmt.Sprintf("%s index %d is negative", op.name, val)
		return 0, scriptError(ErrInvalidStackOperation, str)
	}
	if val >= int64(vm.dstack.Depth()) {
		str := fmt.Sprintf("%s index %d is beyond the %d remaining "+
			"items", op.name, val, vm.dstack.Depth())
		return 0, scriptError(ErrStackUnderflow, str)
	}
	return int(val), nil
}

// opcodePick treats the top item on the data stack as an integer and duplicates
// the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [xn ... x2 x1 x0 xn]
// Example with n=1: [x2 x1 x0 1] -> [x2 x1 x0 x1]
// Example with n=2: [x2 x1 x0 2] -> [x2 x1 x0 x2]
func opcodePick(op *opcode, vm *Engine) error {
	val, err := popIndex(op, vm)
	if err != nil {
		return err
	}

	return vm.dstack.PickN(val)
}

// opcodeRoll treats the top item on the data stack as an integer and moves
// the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [... x2 x1 x0 xn]
// Example with n=1: [x2 x1 x0 1] -> [x2 x0 x1]
// Example with n=2: [x2 x1 x0 2] -> [x1 x0 x2]
func opcodeRoll(op *opcode, vm *Engine) error {
	val, err := popIndex(op, vm)
	if err != nil {
		return err
	}

	return vm.dstack.RollN(val)
}

// opcodeRot rotates the top 3 items on the data stack to the left.
//
// Stack transformation: [... x1 x2 x3] -> [... x2 x3 x1]
func opcodeRot(op *opcode, vm *Engine) error {
	return vm.dstack.RotN(1)
}

// opcodeSwap swaps the top two items on the stack.
//
// Stack transformation: [... x1 x2] -> [... x2 x1]
func opcodeSwap(op *opcode, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

// opcodeTuck inserts a duplicate of the top item of the data stack before the
// second-to-top item.
//
// Stack transformation: [... x1 x2] -> [... x2 x1 x2]
func opcodeTuck(op *opcode, vm *Engine) error {
	return vm.dstack.Tuck()
}

// opcodeSize pushes the size of the top item of the data stack onto the data
// stack.
//
// Stack transformation: [... x1] -> [... x1 len(x1)]
func opcodeSize(op *opcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	vm.dstack.PushInt(int64(len(so)))
	return nil
}

// opcodeEqual removes the top 2 items of the data stack, compares them as raw
// bytes, and pushes the result, encoded as a boolean, back to the stack.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeEqual(op *opcode, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

// opcodeEqualVerify is a combination of opcodeEqual and opcodeVerify.
// Specifically, it removes the top 2 items of the data stack, compares them,
// and pushes the result, encoded as a boolean, back to the stack.  Then, it
// examines the top item on the data stack as a boolean value and verifies it
// evaluates to true.  An error is returned if it does not.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeEqualVerify(op *opcode, vm *Engine) error {
	err := opcodeEqual(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrEqualVerify)
	}
	return err
}

// unaryNumOp pops one number, applies fn and pushes the result.
func unaryNumOp(vm *Engine, fn func(v *big.Int) *big.Int) error {
	v, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBigInt(fn(v))
	return nil
}

// binaryNumOp pops two numbers and pushes fn(x1, x2), where x2 was on top.
func binaryNumOp(vm *Engine, fn func(x1, x2 *big.Int) *big.Int) error {
	v0, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBigInt(fn(v1, v0))
	return nil
}

// binaryNumCmp pops two numbers and pushes the boolean fn(x1, x2), where x2
// was on top.
func binaryNumCmp(vm *Engine, fn func(cmp int) bool) error {
	v0, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(fn(v1.Cmp(v0)))
	return nil
}

var bigOne = big.NewInt(1)

// opcode1Add treats the top item on the data stack as an integer and replaces
// it with its incremented value (plus 1).
//
// Stack transformation: [... x1 x2] -> [... x1 x2+1]
func opcode1Add(op *opcode, vm *Engine) error {
	return unaryNumOp(vm, func(v *big.Int) *big.Int {
		return v.Add(v, bigOne)
	})
}

// opcode1Sub treats the top item on the data stack as an integer and replaces
// it with its decremented value (minus 1).
//
// Stack transformation: [... x1 x2] -> [... x1 x2-1]
func opcode1Sub(op *opcode, vm *Engine) error {
	return unaryNumOp(vm, func(v *big.Int) *big.Int {
		return v.Sub(v, bigOne)
	})
}

// opcodeNegate treats the top item on the data stack as an integer and replaces
// it with its negation.
//
// Stack transformation: [... x1 x2] -> [... x1 -x2]
func opcodeNegate(op *opcode, vm *Engine) error {
	return unaryNumOp(vm, func(v *big.Int) *big.Int {
		return v.Neg(v)
	})
}

// opcodeAbs treats the top item on the data stack as an integer and replaces it
// it with its absolute value.
//
// Stack transformation: [... x1 x2] -> [... x1 abs(x2)]
func opcodeAbs(op *opcode, vm *Engine) error {
	return unaryNumOp(vm, func(v *big.Int) *big.Int {
		return v.Abs(v)
	})
}

// opcodeNot treats the top item on the data stack as an integer and replaces
// it with its "inverted" value (0 becomes 1, non-zero becomes 0).
//
// Stack transformation (x2==0): [... x1 0] -> [... x1 1]
// Stack transformation (x2!=0): [... x1 1] -> [... x1 0]
// Stack transformation (x2!=0): [... x1 17] -> [... x1 0]
func opcodeNot(op *opcode, vm *Engine) error {
	v, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(v.Sign() == 0)
	return nil
}

// opcode0NotEqual treats the top item on the data stack as an integer and
// replaces it with either a 0 if it is zero, or a 1 if it is not zero.
//
// Stack transformation (x2==0): [... x1 0] -> [... x1 0]
// Stack transformation (x2!=0): [... x1 1] -> [... x1 1]
// Stack transformation (x2!=0): [... x1 17] -> [... x1 1]
func opcode0NotEqual(op *opcode, vm *Engine) error {
	v, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(v.Sign() != 0)
	return nil
}

// opcodeAdd treats the top two items on the data stack as integers and replaces
// them with their sum.
//
// Stack transformation: [... x1 x2] -> [... x1+x2]
func opcodeAdd(op *opcode, vm *Engine) error {
	return binaryNumOp(vm, func(x1, x2 *big.Int) *big.Int {
		return new(big.Int).Add(x1, x2)
	})
}

// opcodeSub treats the top two items on the data stack as integers and replaces
// them with the result of subtracting the top entry from the second-to-top
// entry.
//
// Stack transformation: [... x1 x2] -> [... x1-x2]
func opcodeSub(op *opcode, vm *Engine) error {
	return binaryNumOp(vm, func(x1, x2 *big.Int) *big.Int {
		return new(big.Int).Sub(x1, x2)
	})
}

// popBoolAndOperand pops an OP_BOOLAND operand, rejecting encodings longer
// than four bytes before decoding.
func popBoolAndOperand(vm *Engine) (*big.Int, error) {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return nil, err
	}
	if len(so) > maxBoolAndOperandLen {
		str := fmt.Sprintf("OP_BOOLAND operand %x is %d bytes, max "+
			"allowed is %d", so, len(so), maxBoolAndOperandLen)
		return nil, scriptError(ErrNumberTooBig, str)
	}
	return decodeBig(so), nil
}

// opcodeBoolAnd treats the top two items on the data stack as integers.  When
// both of them are not zero, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==0, x2==0): [... 0 0] -> [... 0]
// Stack transformation (x1!=0, x2==0): [... 5 0] -> [... 0]
// Stack transformation (x1==0, x2!=0): [... 0 7] -> [... 0]
// Stack transformation (x1!=0, x2!=0): [... 4 8] -> [... 1]
func opcodeBoolAnd(op *opcode, vm *Engine) error {
	v0, err := popBoolAndOperand(vm)
	if err != nil {
		return err
	}
	v1, err := popBoolAndOperand(vm)
	if err != nil {
		return err
	}

	vm.dstack.PushBool(v0.Sign() != 0 && v1.Sign() != 0)
	return nil
}

// opcodeBoolOr treats the top two items on the data stack as integers.  When
// either of them are not zero, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==0, x2==0): [... 0 0] -> [... 0]
// Stack transformation (x1!=0, x2==0): [... 5 0] -> [... 1]
// Stack transformation (x1==0, x2!=0): [... 0 7] -> [... 1]
// Stack transformation (x1!=0, x2!=0): [... 4 8] -> [... 1]
func opcodeBoolOr(op *opcode, vm *Engine) error {
	v0, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(v0.Sign() != 0 || v1.Sign() != 0)
	return nil
}

// opcodeNumEqual treats the top two items on the data stack as integers.  When
// they are equal, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==x2): [... 5 5] -> [... 1]
// Stack transformation (x1!=x2): [... 5 7] -> [... 0]
func opcodeNumEqual(op *opcode, vm *Engine) error {
	return binaryNumCmp(vm, func(cmp int) bool { return cmp == 0 })
}

// opcodeNumEqualVerify is a combination of opcodeNumEqual and opcodeVerify.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeNumEqualVerify(op *opcode, vm *Engine) error {
	err := opcodeNumEqual(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrNumEqualVerify)
	}
	return err
}

// opcodeNumNotEqual treats the top two items on the data stack as integers.
// When they are NOT equal, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==x2): [... 5 5] -> [... 0]
// Stack transformation (x1!=x2): [... 5 7] -> [... 1]
func opcodeNumNotEqual(op *opcode, vm *Engine) error {
	return binaryNumCmp(vm, func(cmp int) bool { return cmp != 0 })
}

// opcodeLessThan treats the top two items on the data stack as integers.  When
// the second-to-top item is less than the top item, they are replaced with a 1,
// otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeLessThan(op *opcode, vm *Engine) error {
	return binaryNumCmp(vm, func(cmp int) bool { return cmp < 0 })
}

// opcodeGreaterThan treats the top two items on the data stack as integers.
// When the second-to-top item is greater than the top item, they are replaced
// with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeGreaterThan(op *opcode, vm *Engine) error {
	return binaryNumCmp(vm, func(cmp int) bool { return cmp > 0 })
}

// opcodeLessThanOrEqual treats the top two items on the data stack as integers.
// When the second-to-top item is less than or equal to the top item, they are
// replaced with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeLessThanOrEqual(op *opcode, vm *Engine) error {
	return binaryNumCmp(vm, func(cmp int) bool { return cmp <= 0 })
}

// opcodeGreaterThanOrEqual treats the top two items on the data stack as
// integers.  When the second-to-top item is greater than or equal to the top
// item, they are replaced with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeGreaterThanOrEqual(op *opcode, vm *Engine) error {
	return binaryNumCmp(vm, func(cmp int) bool { return cmp >= 0 })
}

// opcodeMin treats the top two items on the data stack as integers and replaces
// them with the minimum of the two.
//
// Stack transformation: [... x1 x2] -> [... min(x1, x2)]
func opcodeMin(op *opcode, vm *Engine) error {
	return binaryNumOp(vm, func(x1, x2 *big.Int) *big.Int {
		if x1.Cmp(x2) < 0 {
			return x1
		}
		return x2
	})
}

// opcodeMax treats the top two items on the data stack as integers and replaces
// them with the maximum of the two.
//
// Stack transformation: [... x1 x2] -> [... max(x1, x2)]
func opcodeMax(op *opcode, vm *Engine) error {
	return binaryNumOp(vm, func(x1, x2 *big.Int) *big.Int {
		if x1.Cmp(x2) > 0 {
			return x1
		}
		return x2
	})
}

// opcodeWithin treats the top 3 items on the data stack as integers.  When the
// value to test is within the specified range (left inclusive), they are
// replaced with a 1, otherwise a 0.
//
// The top item is the max value, the second-top-item is the minimum value, and
// the third-to-top item is the value to test.
//
// Stack transformation: [... x1 min max] -> [... bool]
func opcodeWithin(op *opcode, vm *Engine) error {
	maxVal, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	minVal, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	x, err := vm.dstack.PopBigInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(x.Cmp(minVal) >= 0 && x.Cmp(maxVal) < 0)
	return nil
}

// hashOp pops the top item and pushes fn applied to it.
func hashOp(vm *Engine, fn func([]byte) []byte) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushByteArray(fn(buf))
	return nil
}

// opcodeRipemd160 treats the top item of the data stack as raw bytes and
// replaces it with ripemd160(data).
//
// Stack transformation: [... x1] -> [... ripemd160(x1)]
func opcodeRipemd160(op *opcode, vm *Engine) error {
	return hashOp(vm, chainhash.Ripemd160)
}

// opcodeSha1 treats the top item of the data stack as raw bytes and replaces it
// with sha1(data).
//
// Stack transformation: [... x1] -> [... sha1(x1)]
func opcodeSha1(op *opcode, vm *Engine) error {
	return hashOp(vm, func(buf []byte) []byte {
		hash := sha1.Sum(buf)
		return hash[:]
	})
}

// opcodeSha256 treats the top item of the data stack as raw bytes and replaces
// it with sha256(data).
//
// Stack transformation: [... x1] -> [... sha256(x1)]
func opcodeSha256(op *opcode, vm *Engine) error {
	return hashOp(vm, chainhash.HashB)
}

// opcodeHash160 treats the top item of the data stack as raw bytes and replaces
// it with ripemd160(sha256(data)).
//
// Stack transformation: [... x1] -> [... ripemd160(sha256(x1))]
func opcodeHash160(op *opcode, vm *Engine) error {
	return hashOp(vm, chainhash.Hash160)
}

// opcodeHash256 treats the top item of the data stack as raw bytes and replaces
// it with sha256(sha256(data)).
//
// Stack transformation: [... x1] -> [... sha256(sha256(x1))]
func opcodeHash256(op *opcode, vm *Engine) error {
	return hashOp(vm, chainhash.DoubleHashB)
}

// opcodeCodeSeparator stores the current script offset as the most recently
// seen OP_CODESEPARATOR which is used during signature checking.
//
// This opcode does not change the contents of the data stack.
func opcodeCodeSeparator(op *opcode, vm *Engine) error {
	vm.lastCodeSep = vm.pc
	return nil
}

// checkSig verifies a signature, with its trailing hash type byte, against a
// public key for the input being evaluated.  Malformed signatures and keys
// verify as false rather than failing the script.
func (vm *Engine) checkSig(fullSig, pkBytes []byte, subScript []byte) bool {
	if len(fullSig) == 0 {
		return false
	}

	hashType := SigHashType(fullSig[len(fullSig)-1])
	sigBytes := fullSig[:len(fullSig)-1]

	pubKey, err := secp256k1.ParsePubKey(pkBytes)
	if err != nil {
		log.Debugf("unable to parse public key %x: %v", pkBytes, err)
		return false
	}
	signature, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		log.Debugf("unable to parse signature %x: %v", sigBytes, err)
		return false
	}

	sigHash, err := CalcSignatureHash(subScript, hashType, vm.txCtx.Tx,
		vm.txCtx.InputIndex)
	if err != nil {
		log.Debugf("unable to compute signature hash: %v", err)
		return false
	}

	var hash chainhash.Hash
	copy(hash[:], sigHash)
	if vm.sigCache != nil && vm.sigCache.Exists(hash, sigBytes, pkBytes) {
		return true
	}

	valid := signature.Verify(sigHash, pubKey)
	log.Tracef("%v", newLogClosure(func() string {
		return fmt.Sprintf("sighash %x sig %x pubkey %x valid %v",
			sigHash, sigBytes, pkBytes, valid)
	}))
	if valid && vm.sigCache != nil {
		vm.sigCache.Add(hash, sigBytes, pkBytes)
	}
	return valid
}

// opcodeCheckSig treats the top 2 items on the stack as a public key and a
// signature and replaces them with a bool which indicates if the signature was
// successfully verified.
//
// The hash type byte appended to the signature selects how the signature hash
// is computed.  Segregated witness transactions are not verified and always
// report a valid signature.
//
// Stack transformation: [... signature pubkey] -> [... bool]
func opcodeCheckSig(op *opcode, vm *Engine) error {
	if err := vm.requireTx(op); err != nil {
		return err
	}

	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	fullSig, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if vm.txCtx.Tx.HasWitness() {
		log.Debugf("Skipping %s verification for segwit input %d",
			op.name, vm.txCtx.InputIndex)
		vm.dstack.PushBool(true)
		return nil
	}

	subScript := removeOpcodeByData(vm.subScript(), fullSig)
	vm.dstack.PushBool(vm.checkSig(fullSig, pkBytes, subScript))
	return nil
}

// opcodeCheckSigVerify is a combination of opcodeCheckSig and opcodeVerify.
// The opcodeCheckSig function is invoked followed by opcodeVerify.  See the
// documentation for each of those opcodes for more details.
//
// Stack transformation: signature pubkey] -> [... bool] -> [...]
func opcodeCheckSigVerify(op *opcode, vm *Engine) error {
	err := opcodeCheckSig(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckSigVerify)
	}
	return err
}

// opcodeCheckMultiSig treats the top item on the stack as an integer number of
// public keys, followed by that many entries as raw data representing the public
// keys, followed by the integer number of signatures, followed by that many
// entries as raw data representing the signatures.
//
// Due to a bug in the original Satoshi client implementation, an additional
// dummy argument is also required by the consensus rules, although it is not
// used.  The dummy value is discarded unchecked.
//
// All of the aforementioned stack items are replaced with a bool which
// indicates if the requisite number of signatures were successfully verified.
//
// Signatures must appear in the same order as the public keys they sign for.
// Each key is tried at most once, so a signature that does not match the
// next remaining key consumes that key.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool]
func opcodeCheckMultiSig(op *opcode, vm *Engine) error {
	if err := vm.requireTx(op); err != nil {
		return err
	}

	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if numKeys < 0 || numKeys > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("number of pubkeys %d is out of range [0, %d]",
			numKeys, MaxPubKeysPerMultiSig)
		return scriptError(ErrInvalidPubKeyCount, str)
	}

	numPubKeys := int(numKeys)
	pubKeys := make([][]byte, 0, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pubKey, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys = append(pubKeys, pubKey)
	}

	numSigs, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if numSigs < 0 || numSigs > numKeys {
		str := fmt.Sprintf("number of signatures %d is out of range "+
			"[0, %d]", numSigs, numKeys)
		return scriptError(ErrInvalidSignatureCount, str)
	}

	numSignatures := int(numSigs)
	signatures := make([][]byte, 0, numSignatures)
	for i := 0; i < numSignatures; i++ {
		signature, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		signatures = append(signatures, signature)
	}

	// A bug in the original Satoshi client implementation means one more
	// stack value than should be used must be popped.
	if _, err := vm.dstack.PopByteArray(); err != nil {
		return err
	}

	if vm.txCtx.Tx.HasWitness() {
		log.Debugf("Skipping %s verification for segwit input %d",
			op.name, vm.txCtx.InputIndex)
		vm.dstack.PushBool(true)
		return nil
	}

	// Remove the signatures from the subscript since there is no way for
	// a signature to sign itself.
	subScript := vm.subScript()
	for _, sig := range signatures {
		subScript = removeOpcodeByData(subScript, sig)
	}

	success := true
	numPubKeys++
	pubKeyIdx := -1
	signatureIdx := 0
	for numSignatures > 0 {
		// When there are more signatures than public keys remaining,
		// there is no way to succeed since too many signatures are
		// invalid, so exit early.
		pubKeyIdx++
		numPubKeys--
		if numSignatures > numPubKeys {
			success = false
			break
		}

		if vm.checkSig(signatures[signatureIdx], pubKeys[pubKeyIdx],
			subScript) {

			signatureIdx++
			numSignatures--
		}
	}

	vm.dstack.PushBool(success)
	return nil
}

// opcodeCheckMultiSigVerify is a combination of opcodeCheckMultiSig and
// opcodeVerify.  The opcodeCheckMultiSig is invoked followed by opcodeVerify.
// See the documentation for each of those opcodes for more details.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool] -> [...]
func opcodeCheckMultiSigVerify(op *opcode, vm *Engine) error {
	err := opcodeCheckMultiSig(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckMultiSigVerify)
	}
	return err
}
