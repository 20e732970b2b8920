package dimacs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/operator-framework/mustool/pkg/mus/constraint"
)

// Dimacs constrains the variables and clauses that make up
// a CNF problem described in DIMACS format
// see: https://logic.pdmi.ras.ru/~basolver/dimacs.html
type Dimacs struct {
	variables []string
	clauses   []string
	literals  [][]int
}

func (d *Dimacs) Variables() []string {
	return d.variables
}

func (d *Dimacs) Clauses() []string {
	return d.clauses
}

// Literals returns the clauses as DIMACS literals.
func (d *Dimacs) Literals() [][]int {
	return d.literals
}

// NewDimacs creates a Dimacs struct with the values
// parsed from the DIMACS formatted stream afforted by dimacsReader
func NewDimacs(dimacsReader io.Reader) (*Dimacs, error) {
	reader := bufio.NewReader(dimacsReader)

	variableSet := map[string]struct{}{}
	numVariables := 0
	numClauses := 0
	var clauses []string
	var literals [][]int

	commentLine := regexp.MustCompile(`^c\s*.*`)
	headerLine := regexp.MustCompile(`^p cnf\s+\d+\s+\d+\s*`)
	clauseLine := regexp.MustCompile(`^(-?\d+\s+)+0`)
	cleanInput := regexp.MustCompile(`\s\s+`)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading dimacs data: %w", err)
		}
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\n")

		// ignore comments
		if commentLine.MatchString(line) {
			continue
		}

		// parse header
		if headerLine.MatchString(line) {
			line = cleanInput.ReplaceAllString(line, " ")
			problem := strings.Split(line, " ")
			if len(problem) != 4 {
				return nil, fmt.Errorf("invalid statement: (%s). Valid format is p cnf <variables> <clauses>", line)
			}
			numVariables, err = strconv.Atoi(problem[2])
			if err != nil {
				return nil, fmt.Errorf("invalid number (%s) in statement (%s)", problem[2], line)
			}
			numClauses, err = strconv.Atoi(problem[3])
			if err != nil {
				return nil, fmt.Errorf("invalid number (%s) in statement (%s)", problem[3], line)
			}
			clauses = make([]string, 0, numClauses)

			// parse next line
			continue
		}

		// collect clauses
		if clauseLine.MatchString(line) {
			if clauses == nil {
				return nil, fmt.Errorf("invalid dimacs format: missing header 'p cnf <variable> <clauses>'")
			}
			line = cleanInput.ReplaceAllString(line, " ")
			clause := strings.Split(line, " ")
			if clause[len(clause)-1] != "0" {
				return nil, fmt.Errorf("invalid clause (%s): does not end with 0", line)
			}
			clause = clause[:len(clause)-1]
			lits, err := validateClause(clause, numVariables)
			if err != nil {
				return nil, fmt.Errorf("invalid clause (%s): %w", line, err)
			}

			// remember variables seen for final validation
			for _, lit := range clause {
				lit = strings.TrimPrefix(lit, "-")
				variableSet[lit] = struct{}{}
			}
			clauses = append(clauses, strings.Join(clause, " "))
			literals = append(literals, lits)

			// parse next line
			continue
		}

		// error out if the instruction is invalid
		return nil, fmt.Errorf("invalid dimacs command: %s", line)
	}

	if numVariables == 0 || numClauses == 0 || clauses == nil {
		return nil, fmt.Errorf("invalid format: no variables or clauses found")
	}

	if len(clauses) != numClauses {
		return nil, fmt.Errorf("invalid format: number of clauses in header differ from the total number of clauses")
	}

	// variables declared in the header may be left unused, clauses that
	// get removed from an instance often are the last to mention them
	if len(variableSet) > numVariables {
		return nil, fmt.Errorf("invalid format: more unique variables found in clauses than declared in header")
	}

	// create variables
	variables := make([]string, 0, numVariables)
	for i := 1; i <= numVariables; i++ {
		variables = append(variables, fmt.Sprint(i))
	}
	return &Dimacs{
		variables: variables,
		clauses:   clauses,
		literals:  literals,
	}, nil
}

// Constraints returns one Clause constraint per clause, in file order.
func (d *Dimacs) Constraints() []constraint.Applied {
	applied := make([]constraint.Applied, len(d.literals))
	for i, lits := range d.literals {
		applied[i] = constraint.Applied{
			Subject:    constraint.Identifier(fmt.Sprintf("c%d", i)),
			Constraint: constraint.Clause(lits...),
		}
	}
	return applied
}

func validateClause(clause []string, numVariables int) ([]int, error) {
	lits := make([]int, 0, len(clause))
	for _, lit := range clause {
		litInt, err := strconv.Atoi(lit)
		if err != nil {
			return nil, fmt.Errorf("%s is not a number", lit)
		}
		if litInt == 0 {
			return nil, fmt.Errorf("0 is not a valid variable")
		}
		if litInt > numVariables || litInt < -numVariables {
			return nil, fmt.Errorf("%s is not a valid variable", lit)
		}
		lits = append(lits, litInt)
	}
	return lits, nil
}
