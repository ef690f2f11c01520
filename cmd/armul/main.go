// Command armul is the terminal front-end for the ARM7TDMI core: a
// line-oriented REPL driving debugger.Controller's command surface
// directly in-process.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/k0kubun/pp"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/zeramorphic/armul/debugger"
	"github.com/zeramorphic/armul/logger"
	"github.com/zeramorphic/armul/modalflag"
)

// config holds the REPL's run-time settings: simulation speed,
// symbol-resolution toggle, and echo-to-stderr, loaded from flags rather
// than a persisted preferences file.
type config struct {
	file         string
	speed        int
	resolveSyms  bool
	echoToStderr bool
}

func parseArgs(args []string) (config, modalflag.ParseResult, error) {
	cfg := config{speed: 1000, resolveSyms: true}

	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)

	file := md.AddString("file", "", "assembly source file to load at startup")
	speed := md.AddInt("speed", cfg.speed, "instructions per step_times batch for the run command")
	noSymbols := md.AddBool("nosymbols", false, "disable symbol_for lookups in line_at comments")
	echo := md.AddBool("echo", false, "echo the logger's entries to stderr")

	r, err := md.Parse()
	if r != modalflag.ParseContinue {
		return cfg, r, err
	}

	cfg.file = *file
	cfg.speed = *speed
	cfg.resolveSyms = !*noSymbols
	cfg.echoToStderr = *echo
	return cfg, r, nil
}

func main() {
	cfg, result, err := parseArgs(os.Args[1:])
	switch result {
	case modalflag.ParseHelp:
		return
	case modalflag.ParseError:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.echoToStderr {
		logger.SetEcho(os.Stderr, false)
	}

	out := colorable.NewColorableStdout()
	useColor := isatty.IsTerminal(os.Stdout.Fd())

	ctl := debugger.NewController()

	rep := &repl{ctl: ctl, cfg: cfg, out: out, useColor: useColor}
	if cfg.file != "" {
		rep.load(cfg.file)
	}
	rep.run()
}

// repl owns the interactive loop. It is not safe for concurrent use, which
// matches this CLI's single-goroutine, single-user model — concurrency
// safety is the Controller's job, not the REPL's.
type repl struct {
	ctl      *debugger.Controller
	cfg      config
	out      io.Writer
	useColor bool
}

func (r *repl) run() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "(armul) ",
		InterruptPrompt: "^C",
		HistoryFile:     historyPath(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintln(r.out, "armul — ARM7TDMI core debugger. Type 'help' for commands.")

	for {
		r.setPrompt(rl)
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.dispatch(line) {
			return
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.armul_history"
}

func (r *repl) setPrompt(rl *readline.Instance) {
	info := r.ctl.ProcessorInfo()
	prompt := fmt.Sprintf("(armul %#08x %s) ", r.ctl.Registers()[15], info.State)
	rl.SetPrompt(r.colorizePrompt(prompt, info.State))
}

func (r *repl) colorizePrompt(prompt, state string) string {
	if !r.useColor {
		return prompt
	}
	switch state {
	case "Error":
		return "\033[31m" + prompt + "\033[0m"
	case "Stopped":
		return "\033[33m" + prompt + "\033[0m"
	default:
		return prompt
	}
}

// dispatch runs one command line, returning true if the REPL should exit.
// A leading `$` on a token is normalised to a `0x` prefix so addresses can
// be typed either way.
func (r *repl) dispatch(line string) bool {
	fields := strings.Fields(line)
	for i, f := range fields {
		if strings.HasPrefix(f, "$") {
			fields[i] = "0x" + f[1:]
		}
	}
	cmd, args := fields[0], fields[1:]

	switch strings.ToLower(cmd) {
	case "help", "?":
		r.help()
	case "load":
		if len(args) != 1 {
			fmt.Fprintln(r.out, "usage: load <path>")
			return false
		}
		r.load(args[0])
	case "reset":
		hard := len(args) > 0 && strings.EqualFold(args[0], "hard")
		r.ctl.Reset(hard)
		fmt.Fprintln(r.out, "reset")
	case "step", "s":
		n := uint32(1)
		if len(args) > 0 {
			if v, err := strconv.ParseUint(args[0], 0, 32); err == nil {
				n = uint32(v)
			}
		}
		r.ctl.StepTimes(n)
		r.printInfo()
	case "run", "r":
		r.ctl.StepTimes(uint32(r.cfg.speed))
		r.printInfo()
	case "regs":
		r.printRegisters()
	case "info":
		r.printInfo()
	case "line":
		if len(args) != 1 {
			fmt.Fprintln(r.out, "usage: line <addr>")
			return false
		}
		r.printLine(args[0])
	case "disasm", "dis":
		r.disasm(args)
	case "break", "b":
		r.breakpoint(args)
	case "hit":
		r.ctl.HitBreakpoint()
		fmt.Fprintln(r.out, "acknowledged breakpoint")
	case "input":
		r.ctl.SetUserInput(strings.Join(args, " "))
	case "output", "o":
		fmt.Fprint(r.out, r.ctl.Output())
	case "clear-output":
		r.ctl.ClearOutput()
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(r.out, "unrecognized command %q; type 'help' for a list\n", cmd)
	}
	return false
}

func (r *repl) help() {
	fmt.Fprint(r.out, `commands:
  load <path>              assemble and load a program, replacing the current one
  reset [hard]              soft reset (default) or hard reset
  step [n]                  execute n instructions (default 1)
  run                        execute a full simulation-speed batch
  regs                       print the 37-slot physical register file
  info                       print processor_info
  line <addr>                disassemble and show the comment at addr
  disasm <start> [count]     disassemble count words from start (default 8)
  break <addr> [on|off]      toggle a breakpoint (default on)
  hit                        acknowledge the breakpoint last stopped at
  input <text>               replace the pending SWI input buffer
  output                     print the accumulated SWI output buffer
  clear-output               clear the SWI output buffer
  quit                       exit
`)
}

func (r *repl) load(path string) {
	res := r.ctl.LoadProgram(debugger.LoadProgramRequest{Path: path, HasPath: true})
	if !res.OK {
		for _, d := range res.Diagnostics {
			fmt.Fprintf(r.out, "%s:%d: %s\n", path, d.Line, d.Message)
		}
		return
	}
	fmt.Fprintf(r.out, "loaded %s\n", path)
}

func (r *repl) printInfo() {
	info := r.ctl.ProcessorInfo()
	pp.Fprintln(r.out, info)
	if info.Output != "" {
		fmt.Fprintf(r.out, "output: %q\n", info.Output)
	}
}

func (r *repl) printRegisters() {
	regs := r.ctl.Registers()
	pp.Fprintln(r.out, regs)
}

func (r *repl) printLine(addrText string) {
	addr, ok := parseAddr(addrText)
	if !ok {
		fmt.Fprintf(r.out, "bad address %q\n", addrText)
		return
	}
	li := r.ctl.LineAt(addr)
	r.printOneLine(addr, li)
}

func (r *repl) printOneLine(addr uint32, li debugger.LineInfo) {
	line := fmt.Sprintf("%#08x: %#08x", addr, li.Value)
	if li.Instr != nil {
		line += "  " + li.Instr.String()
	}
	if li.Comment != "" && r.cfg.resolveSyms {
		line += "  ; " + li.Comment
	}
	fmt.Fprintln(r.out, line)
}

func (r *repl) disasm(args []string) {
	start := r.ctl.Registers()[15]
	count := 8
	if len(args) > 0 {
		if a, ok := parseAddr(args[0]); ok {
			start = a
		}
	}
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			count = v
		}
	}
	lines := r.ctl.DisassembleRange(start, count)
	addr := start
	for _, li := range lines {
		r.printOneLine(addr, li)
		addr += 4
	}
}

func (r *repl) breakpoint(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "usage: break <addr> [on|off]")
		return
	}
	addr, ok := parseAddr(args[0])
	if !ok {
		fmt.Fprintf(r.out, "bad address %q\n", args[0])
		return
	}
	set := true
	if len(args) > 1 {
		set = !strings.EqualFold(args[1], "off")
	}
	r.ctl.Breakpoint(addr, set)
	if set {
		fmt.Fprintf(r.out, "breakpoint set at %#08x\n", addr)
	} else {
		fmt.Fprintf(r.out, "breakpoint cleared at %#08x\n", addr)
	}
}

func parseAddr(s string) (uint32, bool) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
