package polysolve

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subObjArray := func(field string) ([]map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]map[string]interface{}, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			out[i] = m
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		valAny, ok := data["value"]
		if !ok {
			return nil, fmt.Errorf("num: missing 'value'")
		}
		val, ok := valAny.(string)
		if !ok || val == "" {
			return nil, fmt.Errorf("num: 'value' must be a non-empty string")
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add":
		objs, err := subObjArray("terms")
		if err != nil {
			return nil, err
		}
		terms := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("add: terms[%d]: %w", i, err)
			}
			terms[i] = e
		}
		return AddOf(terms...), nil

	case "mul":
		objs, err := subObjArray("factors")
		if err != nil {
			return nil, err
		}
		factors := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("mul: factors[%d]: %w", i, err)
			}
			factors[i] = e
		}
		return MulOf(factors...), nil

	case "pow":
		baseM, err := subObj("base")
		if err != nil {
			return nil, err
		}
		expM, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		base, err := FromJSON(baseM)
		if err != nil {
			return nil, fmt.Errorf("pow: base: %w", err)
		}
		exp, err := FromJSON(expM)
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return PowOf(base, exp), nil

	case "call":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		argM, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		arg, err := FromJSON(argM)
		if err != nil {
			return nil, fmt.Errorf("call: arg: %w", err)
		}
		return callOf(name, arg).Simplify(), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// toolTimeout bounds each tool call; the factorizer and the solver both
// honor cancellation.
const toolTimeout = 30 * time.Second

// HandleToolCall dispatches one JSON tool request to the engine.
func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getStrings := func(key string) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	getExprList := func(key string) ([]Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]Expr, len(raw))
		for i, r := range raw {
			m, ok := r.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be expression object", key, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, err
			}
			result[i] = e
		}
		return result, nil
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), String: e.String()}
	}
	respondList := func(es []Expr) ToolResponse {
		strs := make([]string, len(es))
		objs := make([]interface{}, len(es))
		for i, e := range es {
			strs[i] = e.String()
			objs[i] = e.toJSON()
		}
		return ToolResponse{Result: objs, String: fmt.Sprintf("%v", strs)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	switch req.Tool {
	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(SimplifyExpr(e))

	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Expand(e))

	case "factor":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		out, err := FactorCtx(ctx, e)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(out)

	case "divide":
		a, err := getExpr("dividend")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		b, err := getExpr("divisor")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		q, r, err := Divide(a, b)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{
			Result: map[string]interface{}{"quotient": q.toJSON(), "remainder": r.toJSON()},
			String: fmt.Sprintf("quotient: %s, remainder: %s", q.String(), r.String()),
		}

	case "gcd":
		es, err := getExprList("exprs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(GCD(es...))

	case "lcm":
		es, err := getExprList("exprs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(LCM(es...))

	case "roots":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rs, err := Roots(e, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondList(rs)

	case "solve":
		lhs, err := getExpr("lhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rhs, err := getExpr("rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		eq, err := NewEquation(lhs, rhs)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		sols, err := NewSolver().WithContext(ctx).Solve(eq, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondList(sols)

	case "solve_system":
		lhss, err := getExprList("lhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rhss, err := getExprList("rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if len(lhss) != len(rhss) {
			return ToolResponse{Error: "lhs and rhs must have equal length"}
		}
		vars, err := getStrings("vars")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		eqs := make([]*Equation, len(lhss))
		for i := range lhss {
			eq, eerr := NewEquation(lhss[i], rhss[i])
			if eerr != nil {
				return ToolResponse{Error: eerr.Error()}
			}
			eqs[i] = eq
		}
		sols, err := NewSolver().WithContext(ctx).SolveSystem(eqs, vars)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		out := make([]interface{}, len(sols))
		strs := make([]string, len(sols))
		for i, sol := range sols {
			m := map[string]interface{}{}
			txt := ""
			for _, v := range vars {
				m[v] = sol[v].toJSON()
				if txt != "" {
					txt += ", "
				}
				txt += v + " = " + sol[v].String()
			}
			out[i] = m
			strs[i] = txt
		}
		return ToolResponse{Result: out, String: fmt.Sprintf("%v", strs)}

	case "partial_fractions":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		out, err := PartialFractions(e, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(out)

	case "complete_square":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		out, err := CompleteTheSquare(e, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(out)

	case "degree":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		d := DegreeOf(e, v)
		return ToolResponse{Result: d, String: fmt.Sprintf("%d", d)}

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e.Diff(v).Simplify())

	case "tool_spec":
		return ToolResponse{Result: ToolSpec(), String: "tool specification"}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of every tool HandleToolCall accepts,
// for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("simplify", "Simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("expand", "Distribute products over sums and unroll integer powers", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("factor", "Factor an expression over the rationals", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("divide", "Polynomial division with remainder", []string{"dividend", "divisor"}, map[string]string{"dividend": "object", "divisor": "object"}),
		ts("gcd", "Greatest common divisor of expressions", []string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("lcm", "Least common multiple of expressions", []string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("roots", "All roots of a polynomial, exact when possible", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("solve", "Solve lhs = rhs for a variable", []string{"lhs", "rhs"}, map[string]string{"lhs": "object", "rhs": "object", "var": "string"}),
		ts("solve_system", "Solve a system of equations", []string{"lhs", "rhs", "vars"}, map[string]string{"lhs": "array", "rhs": "array", "vars": "array"}),
		ts("partial_fractions", "Partial fraction decomposition", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("complete_square", "Rewrite a quadratic in completed-square form", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("degree", "Polynomial degree in variable", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("diff", "First derivative d/dx", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
