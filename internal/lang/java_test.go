package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

func TestJava_ListsMethodsAndConstructors(t *testing.T) {
	src := `
class Account {
    private int balance;

    Account(int opening) {
        balance = opening;
    }

    void deposit(int amount) {
        balance += amount;
    }
}
`
	names, err := ListFunctions(parser.LanguageJava, []byte(src))
	require.NoError(t, err)
	assert.Contains(t, names, "Account (constructor)")
	assert.Contains(t, names, "deposit (method)")
}

func TestJava_IfElseChain(t *testing.T) {
	src := `
class Grader {
    String grade(int score) {
        if (score >= 90) {
            return "A";
        } else if (score >= 80) {
            return "B";
        } else {
            return "C";
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{Function: "grade"})
	assert.Equal(t, 3, ir.Complexity)

	first := findNode(t, ir, types.NodeDecision, "score >= 90")
	second := findNode(t, ir, types.NodeDecision, "score >= 80")
	assert.True(t, hasEdge(ir, first.ID, second.ID, "false"))
	a := findNode(t, ir, types.NodeReturn, `return 'A'`)
	assert.True(t, hasEdge(ir, first.ID, a.ID, "true"))
}

func TestJava_EnhancedFor(t *testing.T) {
	src := `
class Mail {
    void sendAll(List<String> addresses) {
        for (String addr : addresses) {
            send(addr);
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	header := findNode(t, ir, types.NodeLoopStart, "addr : addresses")
	send := findNode(t, ir, types.NodeFunctionCall, "send(addr)")
	end := findNode(t, ir, types.NodeLoopEnd, "end loop")
	assert.True(t, hasEdge(ir, header.ID, send.ID, "next item"))
	assert.True(t, hasEdge(ir, header.ID, end.ID, "no more items"))
	assert.True(t, hasEdge(ir, send.ID, header.ID, ""))
}

func TestJava_SwitchGroupsCoalesceLabels(t *testing.T) {
	src := `
class Days {
    boolean isWeekend(int day) {
        switch (day) {
            case 6:
            case 7:
                return true;
            default:
                return false;
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	merged := findNode(t, ir, types.NodeDecision, "case 6, case 7")
	yes := findNode(t, ir, types.NodeReturn, "return true")
	assert.True(t, hasEdge(ir, merged.ID, yes.ID, "match"))
}

func TestJava_SwitchFallthroughWithoutBreak(t *testing.T) {
	src := `
class Log {
    void emit(int level) {
        switch (level) {
            case 1:
                warn();
            case 2:
                info();
                break;
            default:
                debug();
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	warn := findNode(t, ir, types.NodeFunctionCall, "warn()")
	info := findNode(t, ir, types.NodeFunctionCall, "info()")
	debug := findNode(t, ir, types.NodeFunctionCall, "debug()")
	// Level 1 falls into level 2's body; level 2 breaks out.
	assert.True(t, hasEdge(ir, warn.ID, info.ID, ""))
	assert.False(t, hasEdge(ir, info.ID, debug.ID, ""))
}

func TestJava_SwitchRulesNeverFallThrough(t *testing.T) {
	src := `
class Sign {
    int sign(int x) {
        return switch (Integer.signum(x)) {
            case 1 -> 1;
            case -1 -> -1;
            default -> 0;
        };
    }
}
`
	names, err := ListFunctions(parser.LanguageJava, []byte(src))
	require.NoError(t, err)
	assert.Contains(t, names, "sign (method)")
}

func TestJava_TryCatchFinally(t *testing.T) {
	src := `
class Loader {
    void load() {
        try {
            open();
            return;
        } catch (IOException e) {
            report(e);
        } finally {
            close();
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{Function: "load"})
	try := findNode(t, ir, types.NodeProcess, "try")
	open := findNode(t, ir, types.NodeFunctionCall, "open()")
	report := findNode(t, ir, types.NodeFunctionCall, "report(e)")
	ret := findNode(t, ir, types.NodeReturn, "return")
	closeNode := findNode(t, ir, types.NodeFunctionCall, "close()")

	assert.True(t, hasEdge(ir, try.ID, open.ID, ""))
	assert.Equal(t, "catch IOException e", edgeLabel(t, ir, try.ID, report.ID))
	// The early return is intercepted by the finally block, and the handler's
	// open end drains into it too.
	assert.True(t, hasEdge(ir, ret.ID, closeNode.ID, ""))
	assert.True(t, hasEdge(ir, report.ID, closeNode.ID, ""))
	assert.True(t, hasEdge(ir, closeNode.ID, ir.ExitNodeID, ""))
}

func TestJava_TryWithResources(t *testing.T) {
	src := `
class Reader {
    void read(Path p) {
        try (BufferedReader r = open(p)) {
            consume(r);
        } catch (IOException e) {
            report(e);
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	res := findNode(t, ir, types.NodeAssignment, "BufferedReader r = open(p)")
	try := findNode(t, ir, types.NodeProcess, "try")
	assert.True(t, hasEdge(ir, res.ID, try.ID, ""))
}

func TestJava_MethodChainFlattens(t *testing.T) {
	src := `
class Q {
    List<String> actives(List<User> users) {
        return users.stream().filter(User::isActive).collect(Collectors.toList());
    }
}
`
	names, err := ListFunctions(parser.LanguageJava, []byte(src))
	require.NoError(t, err)
	assert.Contains(t, names, "actives (method)")
}

func TestJava_LambdaArgumentUnfolds(t *testing.T) {
	src := `
class Each {
    void run(List<String> items) {
        items.forEach(item -> handle(item));
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	call := findNode(t, ir, types.NodeMethodCall, "items.forEach")
	handle := findNode(t, ir, types.NodeFunctionCall, "handle(item)")
	assert.True(t, hasEdge(ir, call.ID, handle.ID, "arg 1"))
	// The callback's tail flows back into the call.
	assert.True(t, hasEdge(ir, handle.ID, call.ID, "return"))
}

func TestJava_LambdaFieldIsSelectable(t *testing.T) {
	src := `
class Ops {
    Function<Integer, Integer> doubler = x -> x * 2;
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{Function: "doubler"})
	assert.Equal(t, "doubler (lambda)", ir.Title)
	// Expression body is an implicit return.
	body := findNode(t, ir, types.NodeProcess, "x * 2")
	assert.True(t, hasEdge(ir, body.ID, ir.ExitNodeID, "return"))
}

func TestJava_WhileAndDoWhile(t *testing.T) {
	src := `
class Pump {
    void drain(Queue<String> q) {
        while (!q.isEmpty()) {
            q.poll();
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	header := findNode(t, ir, types.NodeLoopStart, "!q.isEmpty()")
	end := findNode(t, ir, types.NodeLoopEnd, "end loop")
	assert.True(t, hasEdge(ir, header.ID, end.ID, "false"))
}

func TestJava_ThrowIsTerminal(t *testing.T) {
	src := `
class V {
    void check(Object o) {
        if (o == null) {
            throw new IllegalArgumentException("null");
        }
        use(o);
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	thr := findNode(t, ir, types.NodeException, "throw new IllegalArgumentException")
	assert.True(t, hasEdge(ir, thr.ID, ir.ExitNodeID, ""))
}

func TestJava_SynchronizedBlock(t *testing.T) {
	src := `
class C {
    void bump() {
        synchronized (lock) {
            n++;
        }
    }
}
`
	ir := mustGenerate(t, parser.LanguageJava, src, Options{})
	mon := findNode(t, ir, types.NodeProcess, "synchronized lock")
	inc := findNode(t, ir, types.NodeAssignment, "n++")
	assert.True(t, hasEdge(ir, mon.ID, inc.ID, ""))
}
