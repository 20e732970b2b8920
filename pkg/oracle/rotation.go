package oracle

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// CriticalsRotation widens crits by model rotation. For a constraint c
// critical for seed, a model of seed\{c} falsifies c alone; flipping a
// variable of c yields an assignment that, when it falsifies exactly
// one other constraint d of seed, proves d critical as well. Every newly
// found critical constraint is rotated in turn.
//
// Backends that do not expose clauses leave crits unchanged.
func (o *Oracle) CriticalsRotation(crits, seed mus.Formula) error {
	cb, ok := o.backend.(ClauseBackend)
	if !ok {
		return nil
	}
	clauses := cb.Clauses()

	var queue []int
	for i, b := range crits {
		if b && seed[i] {
			queue = append(queue, i)
		}
	}
	active := seed.Indices()

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		s := seed.Clone()
		s[c] = false
		sat, err := o.Solve(s, false, false)
		if err != nil {
			return err
		}
		if !sat {
			// c is not critical for seed, nothing to rotate from
			continue
		}
		model := cb.Model()

		for _, lit := range clauses[c] {
			v := abs(lit)
			flipped := make([]bool, max(len(model), v))
			copy(flipped, model)
			flipped[v-1] = !flipped[v-1]

			falsified, count := -1, 0
			for _, i := range active {
				if !satisfied(clauses[i], flipped) {
					falsified = i
					count++
					if count > 1 {
						break
					}
				}
			}
			if count != 1 || crits[falsified] {
				continue
			}
			crits[falsified] = true
			o.rotations++
			queue = append(queue, falsified)
		}
	}
	return nil
}

func satisfied(clause []int, model []bool) bool {
	for _, lit := range clause {
		v := abs(lit)
		value := v <= len(model) && model[v-1]
		if value == (lit > 0) {
			return true
		}
	}
	return false
}

func abs(lit int) int {
	if lit < 0 {
		return -lit
	}
	return lit
}
