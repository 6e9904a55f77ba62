package wasmsig

import "encoding/json"

// jsonDescriptor is the wire shape persisted in the functions table's
// signature column: a tagged union with the discriminant under "kind".
type jsonDescriptor struct {
	Kind  string           `json:"kind"`
	Inner *jsonDescriptor  `json:"inner,omitempty"`
	Func  *jsonFuncPayload `json:"function,omitempty"`
}

type jsonFuncPayload struct {
	ShimIdx     uint8            `json:"shim_idx"`
	Params      []jsonDescriptor `json:"params"`
	Return      jsonDescriptor   `json:"return"`
	InnerReturn jsonDescriptor   `json:"inner_return"`
}

func toJSON(d Descriptor) jsonDescriptor {
	jd := jsonDescriptor{Kind: d.Kind.String()}
	if d.Inner != nil {
		inner := toJSON(*d.Inner)
		jd.Inner = &inner
	}
	if d.Func != nil {
		params := make([]jsonDescriptor, len(d.Func.Params))
		for i, p := range d.Func.Params {
			params[i] = toJSON(p)
		}
		jd.Func = &jsonFuncPayload{
			ShimIdx:     d.Func.ShimIdx,
			Params:      params,
			Return:      toJSON(d.Func.Return),
			InnerReturn: toJSON(d.Func.InnerReturn),
		}
	}
	return jd
}

var kindFromName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func fromJSON(jd jsonDescriptor) (Descriptor, error) {
	kind, ok := kindFromName[jd.Kind]
	if !ok {
		return Descriptor{}, &UnsupportedTypeError{Name: jd.Kind}
	}
	d := Descriptor{Kind: kind}
	if jd.Inner != nil {
		inner, err := fromJSON(*jd.Inner)
		if err != nil {
			return Descriptor{}, err
		}
		d.Inner = &inner
	}
	if jd.Func != nil {
		params := make([]Descriptor, len(jd.Func.Params))
		for i, p := range jd.Func.Params {
			pd, err := fromJSON(p)
			if err != nil {
				return Descriptor{}, err
			}
			params[i] = pd
		}
		ret, err := fromJSON(jd.Func.Return)
		if err != nil {
			return Descriptor{}, err
		}
		innerRet, err := fromJSON(jd.Func.InnerReturn)
		if err != nil {
			return Descriptor{}, err
		}
		d.Func = &FunctionSignature{
			ShimIdx:     jd.Func.ShimIdx,
			Params:      params,
			Return:      ret,
			InnerReturn: innerRet,
		}
	}
	return d, nil
}

// MarshalJSON implements json.Marshaler with an explicit "kind" discriminant.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(d))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Descriptor) UnmarshalJSON(b []byte) error {
	var jd jsonDescriptor
	if err := json.Unmarshal(b, &jd); err != nil {
		return err
	}
	decoded, err := fromJSON(jd)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

// MarshalJSON implements json.Marshaler for a top-level signature.
func (s FunctionSignature) MarshalJSON() ([]byte, error) {
	d := Descriptor{Kind: KindFunction, Func: &s}
	return json.Marshal(toJSON(d))
}

// UnmarshalJSON implements json.Unmarshaler for a top-level signature.
func (s *FunctionSignature) UnmarshalJSON(b []byte) error {
	var jd jsonDescriptor
	if err := json.Unmarshal(b, &jd); err != nil {
		return err
	}
	d, err := fromJSON(jd)
	if err != nil {
		return err
	}
	if d.Kind != KindFunction || d.Func == nil {
		return ErrNotAFunction
	}
	*s = *d.Func
	return nil
}
