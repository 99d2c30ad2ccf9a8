package proc

import (
	"testing"

	"github.com/rv39core/kernel/util"
)

func TestAccntToRusageEncoding(t *testing.T) {
	var a Accnt_t
	a.Utadd(2_500_000_000) // 2.5s user
	a.Systadd(1_000_000)   // 1ms system

	buf := a.To_rusage()
	if len(buf) != 32 {
		t.Fatalf("To_rusage length = %d, want 32", len(buf))
	}
	userSec := util.Readn(buf, 8, 0)
	userUsec := util.Readn(buf, 8, 8)
	sysSec := util.Readn(buf, 8, 16)
	sysUsec := util.Readn(buf, 8, 24)

	if userSec != 2 || userUsec != 500000 {
		t.Fatalf("user time = %ds %dus, want 2s 500000us", userSec, userUsec)
	}
	if sysSec != 0 || sysUsec != 1000 {
		t.Fatalf("sys time = %ds %dus, want 0s 1000us", sysSec, sysUsec)
	}
}

func TestAccntAddIsCumulative(t *testing.T) {
	var a Accnt_t
	a.Utadd(100)
	a.Utadd(200)
	if a.Userns != 300 {
		t.Fatalf("Userns = %d, want 300", a.Userns)
	}
}
