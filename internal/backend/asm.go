package backend

import (
	"fmt"
	"strings"
)

func line(sb *strings.Builder, format string, args ...interface{}) {
	sb.WriteString("  ")
	fmt.Fprintf(sb, format, args...)
	sb.WriteString("\n")
}

func inRange12(n int) bool { return n >= -2048 && n <= 2047 }

// emitAdjustSP changes sp in place by delta, synthesizing the
// constant through t0 when it overflows addi's 12-bit immediate.
func emitAdjustSP(sb *strings.Builder, delta int) {
	if delta == 0 {
		return
	}
	if inRange12(delta) {
		line(sb, "addi sp, sp, %d", delta)
		return
	}
	line(sb, "li t0, %d", delta)
	line(sb, "add sp, sp, t0")
}

// emitAddSPOffset computes dstReg = sp + offset, synthesizing the
// constant through dstReg itself when it overflows addi's immediate.
func emitAddSPOffset(sb *strings.Builder, dstReg string, offset int) {
	if inRange12(offset) {
		line(sb, "addi %s, sp, %d", dstReg, offset)
		return
	}
	line(sb, "li %s, %d", dstReg, offset)
	line(sb, "add %s, sp, %s", dstReg, dstReg)
}

// emitLoadWord loads 4 bytes from baseReg+offset into dstReg,
// synthesizing the address through t2 when offset overflows lw's
// immediate. baseReg is always sp in this back end, so t2 never
// collides with the address it is being used to compute.
func emitLoadWord(sb *strings.Builder, dstReg, baseReg string, offset int) {
	if inRange12(offset) {
		line(sb, "lw %s, %d(%s)", dstReg, offset, baseReg)
		return
	}
	line(sb, "li t2, %d", offset)
	line(sb, "add t2, %s, t2", baseReg)
	line(sb, "lw %s, 0(t2)", dstReg)
}

// emitStoreWord is emitLoadWord's store-side twin.
func emitStoreWord(sb *strings.Builder, srcReg, baseReg string, offset int) {
	if inRange12(offset) {
		line(sb, "sw %s, %d(%s)", srcReg, offset, baseReg)
		return
	}
	line(sb, "li t2, %d", offset)
	line(sb, "add t2, %s, t2", baseReg)
	line(sb, "sw %s, 0(t2)", srcReg)
}
