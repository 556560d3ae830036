package cpu

// doAlu performs the ALU operation on registers reg_a and reg_b, storing the
// result in reg_a. CMP stores its result in the flags instead.
// No register is modified when an error is returned.
func (cpu *Cpu) doAlu(op AluOp, reg_a, reg_b int) (err error) {
	a, err := cpu.Register.Read(reg_a)
	if err != nil {
		return
	}

	var b byte
	if op.Arity() == 2 {
		b, err = cpu.Register.Read(reg_b)
		if err != nil {
			return
		}
	}

	input, value := uint(a), uint(b)

	var output uint
	switch op {
	case ALU_ADD:
		output = input + value
	case ALU_SUB:
		output = input - value
	case ALU_MUL:
		output = input * value
	case ALU_DIV:
		if value == 0 {
			return ErrDivideByZero
		}
		output = input / value
	case ALU_MOD:
		if value == 0 {
			return ErrDivideByZero
		}
		output = input % value
	case ALU_INC:
		output = input + 1
	case ALU_DEC:
		output = input - 1
	case ALU_CMP:
		cpu.Flags = compareFlags(a, b)
		return
	case ALU_AND:
		output = input & value
	case ALU_NOT:
		output = ^input
	case ALU_OR:
		output = input | value
	case ALU_XOR:
		output = input ^ value
	case ALU_SHL:
		output = input << value
	case ALU_SHR:
		output = input >> value
	default:
		return ErrUnsupported
	}

	return cpu.Register.Write(reg_a, int(output&0xff))
}
