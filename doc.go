/*
Package tval implements a typed value model: a closed tagged union of scalar,
list, map, set and range values that can travel over the wire, plus
conversions between native Go values and that union.

The union has these variants:

1. Int64Value (also used for booleans, as 0 and 1).

2. Float64Value, BlobValue, TextValue.

3. ListValue, a homogeneous sequence stored in a per-type slot.

4. MapValue, two parallel lists of keys and values.

5. SetValue, a list with set semantics.

6. RangeValue, a pair of bounds, each unbounded, included or excluded.

TypedValue wraps an optional Value; the zero TypedValue is absent ("no value",
like SQL NULL).

# Conversions

Constructors (ToValue, ListOf, MapOf, SetOf, RangeOf, ...) never fail.
Extractors (TryFromValue, SliceFromList, MapFromMapValue, ...) return a
*MismatchError when the value holds something else. The error always carries
the value exactly as it was examined, so
nothing is lost and the caller can retry with another type:

	n, err := tval.TryFromValue[int64](v)
	if err != nil {
		s, err := tval.TryFromValue[string](v)
		...
	}

Every wrapper-level extractor is FromTyped or FromTypedOptional applied to a
value-level one:

	names, ok, err := tval.FromTypedOptional(tv, tval.TryFromListValue[string])

**Empty lists.**
A list with every slot empty carries no element type. It reads back as an
empty slice of whatever type is requested. A list whose requested slot is
empty while another slot is not is a mismatch.

**Booleans.**
There is no boolean variant. Booleans are Int64Value 0 and 1, and any nonzero
integer reads back as true.

# Wire format

See package wire and proto/tval/v1/value.proto.
*/
package tval
