package registers_test

import (
	"testing"

	"github.com/zeramorphic/armul/hardware/registers"
	"github.com/zeramorphic/armul/test"
)

func TestHardResetZeroesEverySlot(t *testing.T) {
	f := registers.NewFile()
	f.Set(registers.R0, 0xdeadbeef)
	f.SetCPSR(0xffffffff)
	f.Clear()
	for i := 0; i < registers.NumPhysical; i++ {
		test.Equate(t, f.GetPhysicalFlat(i), uint32(0))
	}
}

func TestCPSRIndexIsFixedAt31(t *testing.T) {
	test.Equate(t, registers.CPSRIndex, 31)
}

func TestBankingSharedRegisters(t *testing.T) {
	f := registers.NewFile()
	f.SetCPSR(uint32(registers.ModeUsr))
	f.Set(registers.R0, 0x11111111)
	f.SetCPSR(uint32(registers.ModeFiq))
	test.Equate(t, f.Get(registers.R0), uint32(0x11111111))
}

func TestFIQBanksR8ThroughR14(t *testing.T) {
	f := registers.NewFile()
	f.SetCPSR(uint32(registers.ModeUsr))
	f.Set(registers.R13, 0xaaaaaaaa)
	f.SetCPSR(uint32(registers.ModeFiq))
	f.Set(registers.R13, 0xbbbbbbbb)
	test.Equate(t, f.Get(registers.R13), uint32(0xbbbbbbbb))
	f.SetCPSR(uint32(registers.ModeUsr))
	test.Equate(t, f.Get(registers.R13), uint32(0xaaaaaaaa))
}

func TestSystemSharesUsrBank(t *testing.T) {
	f := registers.NewFile()
	f.SetCPSR(uint32(registers.ModeUsr))
	f.Set(registers.R13, 0x12345678)
	f.SetCPSR(uint32(registers.ModeSys))
	test.Equate(t, f.Get(registers.R13), uint32(0x12345678))
}

func TestNoSPSRInUsrOrSys(t *testing.T) {
	f := registers.NewFile()
	f.SetCPSR(uint32(registers.ModeUsr))
	_, ok := f.SPSR()
	test.Equate(t, ok, false)
	f.SetCPSR(uint32(registers.ModeSys))
	_, ok = f.SPSR()
	test.Equate(t, ok, false)
}

func TestSVCHasOwnSPSR(t *testing.T) {
	f := registers.NewFile()
	f.SetCPSR(uint32(registers.ModeSvc))
	ok := f.SetSPSR(0xcafef00d)
	test.Equate(t, ok, true)
	v, ok := f.SPSR()
	test.Equate(t, ok, true)
	test.Equate(t, v, uint32(0xcafef00d))
}

func TestConditionTable(t *testing.T) {
	cases := []struct {
		name       string
		n, z, c, v bool
		cond       registers.Cond
		want       bool
	}{
		{"EQ true", false, true, false, false, registers.CondEQ, true},
		{"EQ false", false, false, false, false, registers.CondEQ, false},
		{"HI true", false, false, true, false, registers.CondHI, true},
		{"HI false carry but zero", false, true, true, false, registers.CondHI, false},
		{"GE n=v", true, false, false, true, registers.CondGE, true},
		{"LT n!=v", true, false, false, false, registers.CondLT, true},
		{"GT", false, false, false, false, registers.CondGT, true},
		{"LE zero", false, true, false, false, registers.CondLE, true},
		{"AL always", false, false, false, false, registers.CondAL, true},
		{"NV never", true, true, true, true, registers.CondNV, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := registers.NewFile()
			f.SetN(c.n)
			f.SetZ(c.z)
			f.SetC(c.c)
			f.SetV(c.v)
			test.Equate(t, f.Test(c.cond), c.want)
		})
	}
}

func TestUnrecognizedModeDefaultsToUsrForRouting(t *testing.T) {
	f := registers.NewFile()
	f.SetCPSR(0) // mode bits 0 do not name a recognized mode
	_, ok := f.Mode()
	test.Equate(t, ok, false)
	f.Set(registers.R0, 7)
	test.Equate(t, f.Get(registers.R0), uint32(7))
}
