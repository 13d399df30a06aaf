package mailbox

import (
	"fmt"
	"strings"
)

// HeaderFname is the file name the compiler uses for CHeader output.
const HeaderFname = "dilemma.h"

// CHeader renders the child's view of the mailbox as a C header. Strategies
// written in C or C++ include it instead of declaring the layout by hand.
func CHeader() string {
	var b strings.Builder
	b.WriteString("/* Generated by dilemma. Do not edit. */\n")
	b.WriteString("#ifndef DILEMMA_H\n#define DILEMMA_H\n\n")
	b.WriteString("#include <stdlib.h>\n#include <sys/ipc.h>\n#include <sys/shm.h>\n\n")
	fmt.Fprintf(&b, "#define DILEMMA_END_OF_ITERATIONS (%d)\n\n", EndOfIterations)

	b.WriteString("struct dilemma_mailbox {\n")
	for _, f := range Fields(Child) {
		fmt.Fprintf(&b, "\tint %s; /* offset %d */\n", f.Name, f.Offset)
	}
	b.WriteString("};\n\n")
	fmt.Fprintf(&b, "typedef char dilemma_mailbox_size_check[sizeof(struct dilemma_mailbox) == %d ? 1 : -1];\n\n", Size)

	b.WriteString(cHelpers)
	b.WriteString("\n#endif\n")
	return b.String()
}

const cHelpers = `static struct dilemma_mailbox *dilemma_box;

static int dilemma_input(void) {
	while (!__atomic_load_n(&dilemma_box->input_ready, __ATOMIC_ACQUIRE))
		;
	int value = __atomic_load_n(&dilemma_box->input_value, __ATOMIC_RELAXED);
	__atomic_store_n(&dilemma_box->input_ready, 0, __ATOMIC_RELEASE);
	return value;
}

static void dilemma_output(int value) {
	__atomic_store_n(&dilemma_box->output_value, value, __ATOMIC_RELAXED);
	__atomic_store_n(&dilemma_box->output_ready, 1, __ATOMIC_RELEASE);
}

static int dilemma_attach(int argc, char *argv[]) {
	if (argc < 2)
		return -1;
	void *addr = shmat(atoi(argv[argc - 1]), NULL, 0);
	if (addr == (void *)-1)
		return -1;
	dilemma_box = (struct dilemma_mailbox *)addr;
	return 0;
}

static void dilemma_detach(void) {
	shmdt(dilemma_box);
}
`
