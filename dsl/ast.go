package dsl

import "strings"

// Text returns the argument as written, strings unquoted.
func (a *Arg) Text() string {
	switch {
	case a == nil:
		return ""
	case a.Quoted != nil:
		return string(*a.Quoted)
	case a.Number != nil:
		return *a.Number
	case a.Color != nil:
		return *a.Color
	case a.Word != nil:
		return *a.Word
	case a.Equals:
		return "="
	}
	return ""
}

// IsWord reports whether the argument is a bare identifier or data path.
func (a *Arg) IsWord() bool { return a != nil && a.Word != nil }

// IsNumber reports whether the argument is a number, with or without unit.
func (a *Arg) IsNumber() bool { return a != nil && a.Number != nil }

// Text flattens a scalar value. Lists yield "".
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.Quoted != nil:
		return string(*v.Quoted)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Word != nil:
		return *v.Word
	}
	return ""
}

// Strings returns the items of a list, or a non-empty scalar as one item.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.List != nil {
		out := make([]string, 0, len(v.List))
		for _, item := range v.List {
			out = append(out, item.Text())
		}
		return out
	}
	if s := v.Text(); s != "" {
		return []string{s}
	}
	return nil
}

// Text joins the bare strings of the block with newlines.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	var parts []string
	for _, st := range b.Statements {
		if st.Text != nil {
			parts = append(parts, string(*st.Text))
		}
	}
	return strings.Join(parts, "\n")
}

// Get returns the value of the last property named key.
func (b *Block) Get(key string) (*Value, bool) {
	if b == nil {
		return nil, false
	}
	var found *Value
	for _, st := range b.Statements {
		if st.Property != nil && strings.EqualFold(st.Property.Key, key) {
			found = st.Property.Value
		}
	}
	return found, found != nil
}

// Commands returns the commands of the block in order.
func (b *Block) Commands() []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, st := range b.Statements {
		if st.Command != nil {
			out = append(out, st.Command)
		}
	}
	return out
}

// Args is a command's argument list split into positional values, key/value
// pairs and bare flags.
type Args struct {
	Positional []string
	Named      map[string]string
	Flags      map[string]bool
}

// ParseArgs splits arguments: strings, numbers and colors are positional; a
// word takes the following argument as its value unless it is listed in
// flags or nothing follows it. '=' separators are skipped.
func ParseArgs(args []*Arg, flags ...string) Args {
	a := Args{Named: map[string]string{}, Flags: map[string]bool{}}
	isFlag := map[string]bool{}
	for _, f := range flags {
		isFlag[f] = true
	}
	var list []*Arg
	for _, arg := range args {
		if !arg.Equals {
			list = append(list, arg)
		}
	}
	for i := 0; i < len(list); i++ {
		if !list[i].IsWord() {
			a.Positional = append(a.Positional, list[i].Text())
			continue
		}
		key := strings.ToLower(list[i].Text())
		if isFlag[key] || i == len(list)-1 {
			a.Flags[key] = true
			continue
		}
		a.Named[key] = list[i+1].Text()
		i++
	}
	return a
}

// Arg returns positional argument i or "".
func (a Args) Arg(i int) string {
	if i < 0 || i >= len(a.Positional) {
		return ""
	}
	return a.Positional[i]
}
