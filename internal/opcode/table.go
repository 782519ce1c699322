package opcode

const (
	Nop                    Opcode = 0x00
	Move                   Opcode = 0x01
	MoveFrom16             Opcode = 0x02
	Move16                 Opcode = 0x03
	MoveWide               Opcode = 0x04
	MoveWideFrom16         Opcode = 0x05
	MoveWide16             Opcode = 0x06
	MoveObject             Opcode = 0x07
	MoveObjectFrom16       Opcode = 0x08
	MoveObject16           Opcode = 0x09
	MoveResult             Opcode = 0x0a
	MoveResultWide         Opcode = 0x0b
	MoveResultObject       Opcode = 0x0c
	MoveException          Opcode = 0x0d
	ReturnVoid             Opcode = 0x0e
	Return                 Opcode = 0x0f
	ReturnWide             Opcode = 0x10
	ReturnObject           Opcode = 0x11
	Const4                 Opcode = 0x12
	Const16                Opcode = 0x13
	Const                  Opcode = 0x14
	ConstHigh16            Opcode = 0x15
	ConstWide16            Opcode = 0x16
	ConstWide32            Opcode = 0x17
	ConstWide              Opcode = 0x18
	ConstWideHigh16        Opcode = 0x19
	ConstString            Opcode = 0x1a
	ConstStringJumbo       Opcode = 0x1b
	ConstClass             Opcode = 0x1c
	MonitorEnter           Opcode = 0x1d
	MonitorExit            Opcode = 0x1e
	CheckCast              Opcode = 0x1f
	InstanceOf             Opcode = 0x20
	ArrayLength            Opcode = 0x21
	NewInstance            Opcode = 0x22
	NewArray               Opcode = 0x23
	FilledNewArray         Opcode = 0x24
	FilledNewArrayRange    Opcode = 0x25
	FillArrayData          Opcode = 0x26
	Throw                  Opcode = 0x27
	Goto                   Opcode = 0x28
	Goto16                 Opcode = 0x29
	Goto32                 Opcode = 0x2a
	PackedSwitch           Opcode = 0x2b
	SparseSwitch           Opcode = 0x2c
	CmplFloat              Opcode = 0x2d
	CmpgFloat              Opcode = 0x2e
	CmplDouble             Opcode = 0x2f
	CmpgDouble             Opcode = 0x30
	CmpLong                Opcode = 0x31
	IfEq                   Opcode = 0x32
	IfNe                   Opcode = 0x33
	IfLt                   Opcode = 0x34
	IfGe                   Opcode = 0x35
	IfGt                   Opcode = 0x36
	IfLe                   Opcode = 0x37
	IfEqz                  Opcode = 0x38
	IfNez                  Opcode = 0x39
	IfLtz                  Opcode = 0x3a
	IfGez                  Opcode = 0x3b
	IfGtz                  Opcode = 0x3c
	IfLez                  Opcode = 0x3d
	Aget                   Opcode = 0x44
	AgetWide               Opcode = 0x45
	AgetObject             Opcode = 0x46
	AgetBoolean            Opcode = 0x47
	AgetByte               Opcode = 0x48
	AgetChar               Opcode = 0x49
	AgetShort              Opcode = 0x4a
	Aput                   Opcode = 0x4b
	AputWide               Opcode = 0x4c
	AputObject             Opcode = 0x4d
	AputBoolean            Opcode = 0x4e
	AputByte               Opcode = 0x4f
	AputChar               Opcode = 0x50
	AputShort              Opcode = 0x51
	Iget                   Opcode = 0x52
	IgetWide               Opcode = 0x53
	IgetObject             Opcode = 0x54
	IgetBoolean            Opcode = 0x55
	IgetByte               Opcode = 0x56
	IgetChar               Opcode = 0x57
	IgetShort              Opcode = 0x58
	Iput                   Opcode = 0x59
	IputWide               Opcode = 0x5a
	IputObject             Opcode = 0x5b
	IputBoolean            Opcode = 0x5c
	IputByte               Opcode = 0x5d
	IputChar               Opcode = 0x5e
	IputShort              Opcode = 0x5f
	Sget                   Opcode = 0x60
	SgetWide               Opcode = 0x61
	SgetObject             Opcode = 0x62
	SgetBoolean            Opcode = 0x63
	SgetByte               Opcode = 0x64
	SgetChar               Opcode = 0x65
	SgetShort              Opcode = 0x66
	Sput                   Opcode = 0x67
	SputWide               Opcode = 0x68
	SputObject             Opcode = 0x69
	SputBoolean            Opcode = 0x6a
	SputByte               Opcode = 0x6b
	SputChar               Opcode = 0x6c
	SputShort              Opcode = 0x6d
	InvokeVirtual          Opcode = 0x6e
	InvokeSuper            Opcode = 0x6f
	InvokeDirect           Opcode = 0x70
	InvokeStatic           Opcode = 0x71
	InvokeInterface        Opcode = 0x72
	InvokeVirtualRange     Opcode = 0x74
	InvokeSuperRange       Opcode = 0x75
	InvokeDirectRange      Opcode = 0x76
	InvokeStaticRange      Opcode = 0x77
	InvokeInterfaceRange   Opcode = 0x78
	NegInt                 Opcode = 0x7b
	NotInt                 Opcode = 0x7c
	NegLong                Opcode = 0x7d
	NotLong                Opcode = 0x7e
	NegFloat               Opcode = 0x7f
	NegDouble              Opcode = 0x80
	IntToLong              Opcode = 0x81
	IntToFloat             Opcode = 0x82
	IntToDouble            Opcode = 0x83
	LongToInt              Opcode = 0x84
	LongToFloat            Opcode = 0x85
	LongToDouble           Opcode = 0x86
	FloatToInt             Opcode = 0x87
	FloatToLong            Opcode = 0x88
	FloatToDouble          Opcode = 0x89
	DoubleToInt            Opcode = 0x8a
	DoubleToLong           Opcode = 0x8b
	DoubleToFloat          Opcode = 0x8c
	IntToByte              Opcode = 0x8d
	IntToChar              Opcode = 0x8e
	IntToShort             Opcode = 0x8f
	AddInt                 Opcode = 0x90
	SubInt                 Opcode = 0x91
	MulInt                 Opcode = 0x92
	DivInt                 Opcode = 0x93
	RemInt                 Opcode = 0x94
	AndInt                 Opcode = 0x95
	OrInt                  Opcode = 0x96
	XorInt                 Opcode = 0x97
	ShlInt                 Opcode = 0x98
	ShrInt                 Opcode = 0x99
	UshrInt                Opcode = 0x9a
	AddLong                Opcode = 0x9b
	SubLong                Opcode = 0x9c
	MulLong                Opcode = 0x9d
	DivLong                Opcode = 0x9e
	RemLong                Opcode = 0x9f
	AndLong                Opcode = 0xa0
	OrLong                 Opcode = 0xa1
	XorLong                Opcode = 0xa2
	ShlLong                Opcode = 0xa3
	ShrLong                Opcode = 0xa4
	UshrLong               Opcode = 0xa5
	AddFloat               Opcode = 0xa6
	SubFloat               Opcode = 0xa7
	MulFloat               Opcode = 0xa8
	DivFloat               Opcode = 0xa9
	RemFloat               Opcode = 0xaa
	AddDouble              Opcode = 0xab
	SubDouble              Opcode = 0xac
	MulDouble              Opcode = 0xad
	DivDouble              Opcode = 0xae
	RemDouble              Opcode = 0xaf
	AddInt2Addr            Opcode = 0xb0
	SubInt2Addr            Opcode = 0xb1
	MulInt2Addr            Opcode = 0xb2
	DivInt2Addr            Opcode = 0xb3
	RemInt2Addr            Opcode = 0xb4
	AndInt2Addr            Opcode = 0xb5
	OrInt2Addr             Opcode = 0xb6
	XorInt2Addr            Opcode = 0xb7
	ShlInt2Addr            Opcode = 0xb8
	ShrInt2Addr            Opcode = 0xb9
	UshrInt2Addr           Opcode = 0xba
	AddLong2Addr           Opcode = 0xbb
	SubLong2Addr           Opcode = 0xbc
	MulLong2Addr           Opcode = 0xbd
	DivLong2Addr           Opcode = 0xbe
	RemLong2Addr           Opcode = 0xbf
	AndLong2Addr           Opcode = 0xc0
	OrLong2Addr            Opcode = 0xc1
	XorLong2Addr           Opcode = 0xc2
	ShlLong2Addr           Opcode = 0xc3
	ShrLong2Addr           Opcode = 0xc4
	UshrLong2Addr          Opcode = 0xc5
	AddFloat2Addr          Opcode = 0xc6
	SubFloat2Addr          Opcode = 0xc7
	MulFloat2Addr          Opcode = 0xc8
	DivFloat2Addr          Opcode = 0xc9
	RemFloat2Addr          Opcode = 0xca
	AddDouble2Addr         Opcode = 0xcb
	SubDouble2Addr         Opcode = 0xcc
	MulDouble2Addr         Opcode = 0xcd
	DivDouble2Addr         Opcode = 0xce
	RemDouble2Addr         Opcode = 0xcf
	AddIntLit16            Opcode = 0xd0
	RsubInt                Opcode = 0xd1
	MulIntLit16            Opcode = 0xd2
	DivIntLit16            Opcode = 0xd3
	RemIntLit16            Opcode = 0xd4
	AndIntLit16            Opcode = 0xd5
	OrIntLit16             Opcode = 0xd6
	XorIntLit16            Opcode = 0xd7
	AddIntLit8             Opcode = 0xd8
	RsubIntLit8            Opcode = 0xd9
	MulIntLit8             Opcode = 0xda
	DivIntLit8             Opcode = 0xdb
	RemIntLit8             Opcode = 0xdc
	AndIntLit8             Opcode = 0xdd
	OrIntLit8              Opcode = 0xde
	XorIntLit8             Opcode = 0xdf
	ShlIntLit8             Opcode = 0xe0
	ShrIntLit8             Opcode = 0xe1
	UshrIntLit8            Opcode = 0xe2
	InvokePolymorphic      Opcode = 0xfa
	InvokePolymorphicRange Opcode = 0xfb
	InvokeCustom           Opcode = 0xfc
	InvokeCustomRange      Opcode = 0xfd
	ConstMethodHandle      Opcode = 0xfe
	ConstMethodType        Opcode = 0xff
	PackedSwitchPayload    Opcode = 0x100
	SparseSwitchPayload    Opcode = 0x200
	ArrayPayload           Opcode = 0x300
)

var infos = []Info{
	{Nop, "nop", Format10x, RefNone, KindNop, ValueNone, cc},
	{Move, "move", Format12x, RefNone, KindMove, ValueInt, cc | sr},
	{MoveFrom16, "move/from16", Format22x, RefNone, KindMove, ValueInt, cc | sr},
	{Move16, "move/16", Format32x, RefNone, KindMove, ValueInt, cc | sr},
	{MoveWide, "move-wide", Format12x, RefNone, KindMove, ValueLong, cc | sr | sw},
	{MoveWideFrom16, "move-wide/from16", Format22x, RefNone, KindMove, ValueLong, cc | sr | sw},
	{MoveWide16, "move-wide/16", Format32x, RefNone, KindMove, ValueLong, cc | sr | sw},
	{MoveObject, "move-object", Format12x, RefNone, KindMove, ValueObject, cc | sr},
	{MoveObjectFrom16, "move-object/from16", Format22x, RefNone, KindMove, ValueObject, cc | sr},
	{MoveObject16, "move-object/16", Format32x, RefNone, KindMove, ValueObject, cc | sr},
	{MoveResult, "move-result", Format11x, RefNone, KindMoveResult, ValueInt, cc | sr},
	{MoveResultWide, "move-result-wide", Format11x, RefNone, KindMoveResult, ValueLong, cc | sr | sw},
	{MoveResultObject, "move-result-object", Format11x, RefNone, KindMoveResult, ValueObject, cc | sr},
	{MoveException, "move-exception", Format11x, RefNone, KindMoveException, ValueObject, cc | sr},
	{ReturnVoid, "return-void", Format10x, RefNone, KindReturn, ValueNone, 0},
	{Return, "return", Format11x, RefNone, KindReturn, ValueInt, 0},
	{ReturnWide, "return-wide", Format11x, RefNone, KindReturn, ValueLong, 0},
	{ReturnObject, "return-object", Format11x, RefNone, KindReturn, ValueObject, 0},
	{Const4, "const/4", Format11n, RefNone, KindConst, ValueInt, cc | sr},
	{Const16, "const/16", Format21s, RefNone, KindConst, ValueInt, cc | sr},
	{Const, "const", Format31i, RefNone, KindConst, ValueInt, cc | sr},
	{ConstHigh16, "const/high16", Format21ih, RefNone, KindConst, ValueInt, cc | sr},
	{ConstWide16, "const-wide/16", Format21s, RefNone, KindConst, ValueLong, cc | sr | sw},
	{ConstWide32, "const-wide/32", Format31i, RefNone, KindConst, ValueLong, cc | sr | sw},
	{ConstWide, "const-wide", Format51l, RefNone, KindConst, ValueLong, cc | sr | sw},
	{ConstWideHigh16, "const-wide/high16", Format21lh, RefNone, KindConst, ValueLong, cc | sr | sw},
	{ConstString, "const-string", Format21c, RefString, KindConstString, ValueObject, cc | ct | sr},
	{ConstStringJumbo, "const-string/jumbo", Format31c, RefString, KindConstString, ValueObject, cc | ct | sr},
	{ConstClass, "const-class", Format21c, RefType, KindConstClass, ValueObject, cc | ct | sr},
	{MonitorEnter, "monitor-enter", Format11x, RefNone, KindMonitor, ValueNone, cc | ct},
	{MonitorExit, "monitor-exit", Format11x, RefNone, KindMonitor, ValueNone, cc | ct},
	{CheckCast, "check-cast", Format21c, RefType, KindCheckCast, ValueObject, cc | ct | sr},
	{InstanceOf, "instance-of", Format22c, RefType, KindInstanceOf, ValueBoolean, cc | ct | sr},
	{ArrayLength, "array-length", Format12x, RefNone, KindArrayLength, ValueInt, cc | ct | sr},
	{NewInstance, "new-instance", Format21c, RefType, KindNewInstance, ValueObject, cc | ct | sr},
	{NewArray, "new-array", Format22c, RefType, KindNewArray, ValueObject, cc | ct | sr},
	{FilledNewArray, "filled-new-array", Format35c, RefType, KindFilledNewArray, ValueObject, cc | ct | sres},
	{FilledNewArrayRange, "filled-new-array/range", Format3rc, RefType, KindFilledNewArray, ValueObject, cc | ct | sres},
	{FillArrayData, "fill-array-data", Format31t, RefNone, KindFillArrayData, ValueNone, cc | ct},
	{Throw, "throw", Format11x, RefNone, KindThrow, ValueNone, ct},
	{Goto, "goto", Format10t, RefNone, KindGoto, ValueNone, 0},
	{Goto16, "goto/16", Format20t, RefNone, KindGoto, ValueNone, 0},
	{Goto32, "goto/32", Format30t, RefNone, KindGoto, ValueNone, 0},
	{PackedSwitch, "packed-switch", Format31t, RefNone, KindSwitch, ValueNone, cc},
	{SparseSwitch, "sparse-switch", Format31t, RefNone, KindSwitch, ValueNone, cc},
	{CmplFloat, "cmpl-float", Format23x, RefNone, KindCmp, ValueByte, cc | sr},
	{CmpgFloat, "cmpg-float", Format23x, RefNone, KindCmp, ValueByte, cc | sr},
	{CmplDouble, "cmpl-double", Format23x, RefNone, KindCmp, ValueByte, cc | sr},
	{CmpgDouble, "cmpg-double", Format23x, RefNone, KindCmp, ValueByte, cc | sr},
	{CmpLong, "cmp-long", Format23x, RefNone, KindCmp, ValueByte, cc | sr},
	{IfEq, "if-eq", Format22t, RefNone, KindIf, ValueNone, cc},
	{IfNe, "if-ne", Format22t, RefNone, KindIf, ValueNone, cc},
	{IfLt, "if-lt", Format22t, RefNone, KindIf, ValueNone, cc},
	{IfGe, "if-ge", Format22t, RefNone, KindIf, ValueNone, cc},
	{IfGt, "if-gt", Format22t, RefNone, KindIf, ValueNone, cc},
	{IfLe, "if-le", Format22t, RefNone, KindIf, ValueNone, cc},
	{IfEqz, "if-eqz", Format21t, RefNone, KindIfZ, ValueNone, cc},
	{IfNez, "if-nez", Format21t, RefNone, KindIfZ, ValueNone, cc},
	{IfLtz, "if-ltz", Format21t, RefNone, KindIfZ, ValueNone, cc},
	{IfGez, "if-gez", Format21t, RefNone, KindIfZ, ValueNone, cc},
	{IfGtz, "if-gtz", Format21t, RefNone, KindIfZ, ValueNone, cc},
	{IfLez, "if-lez", Format21t, RefNone, KindIfZ, ValueNone, cc},
	{Aget, "aget", Format23x, RefNone, KindAget, ValueInt, cc | ct | sr},
	{AgetWide, "aget-wide", Format23x, RefNone, KindAget, ValueLong, cc | ct | sr | sw},
	{AgetObject, "aget-object", Format23x, RefNone, KindAget, ValueObject, cc | ct | sr},
	{AgetBoolean, "aget-boolean", Format23x, RefNone, KindAget, ValueBoolean, cc | ct | sr},
	{AgetByte, "aget-byte", Format23x, RefNone, KindAget, ValueByte, cc | ct | sr},
	{AgetChar, "aget-char", Format23x, RefNone, KindAget, ValueChar, cc | ct | sr},
	{AgetShort, "aget-short", Format23x, RefNone, KindAget, ValueShort, cc | ct | sr},
	{Aput, "aput", Format23x, RefNone, KindAput, ValueInt, cc | ct},
	{AputWide, "aput-wide", Format23x, RefNone, KindAput, ValueLong, cc | ct},
	{AputObject, "aput-object", Format23x, RefNone, KindAput, ValueObject, cc | ct},
	{AputBoolean, "aput-boolean", Format23x, RefNone, KindAput, ValueBoolean, cc | ct},
	{AputByte, "aput-byte", Format23x, RefNone, KindAput, ValueByte, cc | ct},
	{AputChar, "aput-char", Format23x, RefNone, KindAput, ValueChar, cc | ct},
	{AputShort, "aput-short", Format23x, RefNone, KindAput, ValueShort, cc | ct},
	{Iget, "iget", Format22c, RefField, KindIget, ValueInt, cc | ct | sr},
	{IgetWide, "iget-wide", Format22c, RefField, KindIget, ValueLong, cc | ct | sr | sw},
	{IgetObject, "iget-object", Format22c, RefField, KindIget, ValueObject, cc | ct | sr},
	{IgetBoolean, "iget-boolean", Format22c, RefField, KindIget, ValueBoolean, cc | ct | sr},
	{IgetByte, "iget-byte", Format22c, RefField, KindIget, ValueByte, cc | ct | sr},
	{IgetChar, "iget-char", Format22c, RefField, KindIget, ValueChar, cc | ct | sr},
	{IgetShort, "iget-short", Format22c, RefField, KindIget, ValueShort, cc | ct | sr},
	{Iput, "iput", Format22c, RefField, KindIput, ValueInt, cc | ct},
	{IputWide, "iput-wide", Format22c, RefField, KindIput, ValueLong, cc | ct},
	{IputObject, "iput-object", Format22c, RefField, KindIput, ValueObject, cc | ct},
	{IputBoolean, "iput-boolean", Format22c, RefField, KindIput, ValueBoolean, cc | ct},
	{IputByte, "iput-byte", Format22c, RefField, KindIput, ValueByte, cc | ct},
	{IputChar, "iput-char", Format22c, RefField, KindIput, ValueChar, cc | ct},
	{IputShort, "iput-short", Format22c, RefField, KindIput, ValueShort, cc | ct},
	{Sget, "sget", Format21c, RefField, KindSget, ValueInt, cc | ct | sr},
	{SgetWide, "sget-wide", Format21c, RefField, KindSget, ValueLong, cc | ct | sr | sw},
	{SgetObject, "sget-object", Format21c, RefField, KindSget, ValueObject, cc | ct | sr},
	{SgetBoolean, "sget-boolean", Format21c, RefField, KindSget, ValueBoolean, cc | ct | sr},
	{SgetByte, "sget-byte", Format21c, RefField, KindSget, ValueByte, cc | ct | sr},
	{SgetChar, "sget-char", Format21c, RefField, KindSget, ValueChar, cc | ct | sr},
	{SgetShort, "sget-short", Format21c, RefField, KindSget, ValueShort, cc | ct | sr},
	{Sput, "sput", Format21c, RefField, KindSput, ValueInt, cc | ct},
	{SputWide, "sput-wide", Format21c, RefField, KindSput, ValueLong, cc | ct},
	{SputObject, "sput-object", Format21c, RefField, KindSput, ValueObject, cc | ct},
	{SputBoolean, "sput-boolean", Format21c, RefField, KindSput, ValueBoolean, cc | ct},
	{SputByte, "sput-byte", Format21c, RefField, KindSput, ValueByte, cc | ct},
	{SputChar, "sput-char", Format21c, RefField, KindSput, ValueChar, cc | ct},
	{SputShort, "sput-short", Format21c, RefField, KindSput, ValueShort, cc | ct},
	{InvokeVirtual, "invoke-virtual", Format35c, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeSuper, "invoke-super", Format35c, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeDirect, "invoke-direct", Format35c, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeStatic, "invoke-static", Format35c, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeInterface, "invoke-interface", Format35c, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeVirtualRange, "invoke-virtual/range", Format3rc, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeSuperRange, "invoke-super/range", Format3rc, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeDirectRange, "invoke-direct/range", Format3rc, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeStaticRange, "invoke-static/range", Format3rc, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeInterfaceRange, "invoke-interface/range", Format3rc, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{NegInt, "neg-int", Format12x, RefNone, KindUnaryOp, ValueInt, cc | sr},
	{NotInt, "not-int", Format12x, RefNone, KindUnaryOp, ValueInt, cc | sr},
	{NegLong, "neg-long", Format12x, RefNone, KindUnaryOp, ValueLong, cc | sr | sw},
	{NotLong, "not-long", Format12x, RefNone, KindUnaryOp, ValueLong, cc | sr | sw},
	{NegFloat, "neg-float", Format12x, RefNone, KindUnaryOp, ValueFloat, cc | sr},
	{NegDouble, "neg-double", Format12x, RefNone, KindUnaryOp, ValueDouble, cc | sr | sw},
	{IntToLong, "int-to-long", Format12x, RefNone, KindUnaryOp, ValueLong, cc | sr | sw},
	{IntToFloat, "int-to-float", Format12x, RefNone, KindUnaryOp, ValueFloat, cc | sr},
	{IntToDouble, "int-to-double", Format12x, RefNone, KindUnaryOp, ValueDouble, cc | sr | sw},
	{LongToInt, "long-to-int", Format12x, RefNone, KindUnaryOp, ValueInt, cc | sr},
	{LongToFloat, "long-to-float", Format12x, RefNone, KindUnaryOp, ValueFloat, cc | sr},
	{LongToDouble, "long-to-double", Format12x, RefNone, KindUnaryOp, ValueDouble, cc | sr | sw},
	{FloatToInt, "float-to-int", Format12x, RefNone, KindUnaryOp, ValueInt, cc | sr},
	{FloatToLong, "float-to-long", Format12x, RefNone, KindUnaryOp, ValueLong, cc | sr | sw},
	{FloatToDouble, "float-to-double", Format12x, RefNone, KindUnaryOp, ValueDouble, cc | sr | sw},
	{DoubleToInt, "double-to-int", Format12x, RefNone, KindUnaryOp, ValueInt, cc | sr},
	{DoubleToLong, "double-to-long", Format12x, RefNone, KindUnaryOp, ValueLong, cc | sr | sw},
	{DoubleToFloat, "double-to-float", Format12x, RefNone, KindUnaryOp, ValueFloat, cc | sr},
	{IntToByte, "int-to-byte", Format12x, RefNone, KindUnaryOp, ValueByte, cc | sr},
	{IntToChar, "int-to-char", Format12x, RefNone, KindUnaryOp, ValueChar, cc | sr},
	{IntToShort, "int-to-short", Format12x, RefNone, KindUnaryOp, ValueShort, cc | sr},
	{AddInt, "add-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{SubInt, "sub-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{MulInt, "mul-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{DivInt, "div-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr | ct},
	{RemInt, "rem-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr | ct},
	{AndInt, "and-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{OrInt, "or-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{XorInt, "xor-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{ShlInt, "shl-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{ShrInt, "shr-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{UshrInt, "ushr-int", Format23x, RefNone, KindBinaryOp, ValueInt, cc | sr},
	{AddLong, "add-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{SubLong, "sub-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{MulLong, "mul-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{DivLong, "div-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw | ct},
	{RemLong, "rem-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw | ct},
	{AndLong, "and-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{OrLong, "or-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{XorLong, "xor-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{ShlLong, "shl-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{ShrLong, "shr-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{UshrLong, "ushr-long", Format23x, RefNone, KindBinaryOp, ValueLong, cc | sr | sw},
	{AddFloat, "add-float", Format23x, RefNone, KindBinaryOp, ValueFloat, cc | sr},
	{SubFloat, "sub-float", Format23x, RefNone, KindBinaryOp, ValueFloat, cc | sr},
	{MulFloat, "mul-float", Format23x, RefNone, KindBinaryOp, ValueFloat, cc | sr},
	{DivFloat, "div-float", Format23x, RefNone, KindBinaryOp, ValueFloat, cc | sr},
	{RemFloat, "rem-float", Format23x, RefNone, KindBinaryOp, ValueFloat, cc | sr},
	{AddDouble, "add-double", Format23x, RefNone, KindBinaryOp, ValueDouble, cc | sr | sw},
	{SubDouble, "sub-double", Format23x, RefNone, KindBinaryOp, ValueDouble, cc | sr | sw},
	{MulDouble, "mul-double", Format23x, RefNone, KindBinaryOp, ValueDouble, cc | sr | sw},
	{DivDouble, "div-double", Format23x, RefNone, KindBinaryOp, ValueDouble, cc | sr | sw},
	{RemDouble, "rem-double", Format23x, RefNone, KindBinaryOp, ValueDouble, cc | sr | sw},
	{AddInt2Addr, "add-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{SubInt2Addr, "sub-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{MulInt2Addr, "mul-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{DivInt2Addr, "div-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr | ct},
	{RemInt2Addr, "rem-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr | ct},
	{AndInt2Addr, "and-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{OrInt2Addr, "or-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{XorInt2Addr, "xor-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{ShlInt2Addr, "shl-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{ShrInt2Addr, "shr-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{UshrInt2Addr, "ushr-int/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueInt, cc | sr},
	{AddLong2Addr, "add-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{SubLong2Addr, "sub-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{MulLong2Addr, "mul-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{DivLong2Addr, "div-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw | ct},
	{RemLong2Addr, "rem-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw | ct},
	{AndLong2Addr, "and-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{OrLong2Addr, "or-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{XorLong2Addr, "xor-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{ShlLong2Addr, "shl-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{ShrLong2Addr, "shr-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{UshrLong2Addr, "ushr-long/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueLong, cc | sr | sw},
	{AddFloat2Addr, "add-float/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueFloat, cc | sr},
	{SubFloat2Addr, "sub-float/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueFloat, cc | sr},
	{MulFloat2Addr, "mul-float/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueFloat, cc | sr},
	{DivFloat2Addr, "div-float/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueFloat, cc | sr},
	{RemFloat2Addr, "rem-float/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueFloat, cc | sr},
	{AddDouble2Addr, "add-double/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueDouble, cc | sr | sw},
	{SubDouble2Addr, "sub-double/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueDouble, cc | sr | sw},
	{MulDouble2Addr, "mul-double/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueDouble, cc | sr | sw},
	{DivDouble2Addr, "div-double/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueDouble, cc | sr | sw},
	{RemDouble2Addr, "rem-double/2addr", Format12x, RefNone, KindBinaryOp2Addr, ValueDouble, cc | sr | sw},
	{AddIntLit16, "add-int/lit16", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{RsubInt, "rsub-int", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{MulIntLit16, "mul-int/lit16", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{DivIntLit16, "div-int/lit16", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr | ct},
	{RemIntLit16, "rem-int/lit16", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr | ct},
	{AndIntLit16, "and-int/lit16", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{OrIntLit16, "or-int/lit16", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{XorIntLit16, "xor-int/lit16", Format22s, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{AddIntLit8, "add-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{RsubIntLit8, "rsub-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{MulIntLit8, "mul-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{DivIntLit8, "div-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr | ct},
	{RemIntLit8, "rem-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr | ct},
	{AndIntLit8, "and-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{OrIntLit8, "or-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{XorIntLit8, "xor-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{ShlIntLit8, "shl-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{ShrIntLit8, "shr-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{UshrIntLit8, "ushr-int/lit8", Format22b, RefNone, KindBinaryOpLit, ValueInt, cc | sr},
	{InvokePolymorphic, "invoke-polymorphic", Format45cc, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokePolymorphicRange, "invoke-polymorphic/range", Format4rcc, RefMethod, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeCustom, "invoke-custom", Format35c, RefCallSite, KindInvoke, ValueNone, cc | ct | sres},
	{InvokeCustomRange, "invoke-custom/range", Format3rc, RefCallSite, KindInvoke, ValueNone, cc | ct | sres},
	{ConstMethodHandle, "const-method-handle", Format21c, RefMethodHandle, KindConstMethodHandle, ValueObject, cc | ct | sr},
	{ConstMethodType, "const-method-type", Format21c, RefMethodProto, KindConstMethodType, ValueObject, cc | ct | sr},
	{PackedSwitchPayload, "packed-switch-payload", FormatPackedSwitchPayload, RefNone, KindPayload, ValueNone, 0},
	{SparseSwitchPayload, "sparse-switch-payload", FormatSparseSwitchPayload, RefNone, KindPayload, ValueNone, 0},
	{ArrayPayload, "array-payload", FormatArrayPayload, RefNone, KindPayload, ValueNone, 0},
}
