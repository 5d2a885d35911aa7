package minapi

import "net/http"

// ResultsN types are closed unions of result types. A handler declares every
// result it can produce in its signature, which is what the endpoint's
// metadata is built from, and picks one at runtime with the FromK
// constructor of the alternative:
//
//	type getUserResult = minapi.Results2[minapi.Ok[User], minapi.NotFound]
//
//	func getUser(ctx context.Context, in *getUserIn) (getUserResult, error) {
//	    u, ok := store.Find(in.ID)
//	    if !ok {
//	        return getUserResult{}.From2(minapi.NotFound{}), nil
//	    }
//	    return getUserResult{}.From1(minapi.Ok[User]{Value: u}), nil
//	}
//
// Writing a union delegates to the chosen alternative; writing the zero
// union fails with ErrEmptyResult.

// writeUnion writes the chosen alternative.
func writeUnion(w http.ResponseWriter, r *http.Request, chosen Result) error {
	if chosen == nil {
		return ErrEmptyResult
	}
	return chosen.WriteResult(w, r)
}

// describeOf returns the descriptions declared by the zero value of T.
func describeOf[T any]() []ResponseDescription {
	var zero T
	switch d := any(zero).(type) {
	case interface{ Describe() ResponseDescription }:
		return []ResponseDescription{d.Describe()}
	case interface{ Describe() []ResponseDescription }:
		return d.Describe()
	}
	return nil
}

// Results2 is a union of 2 result types.
type Results2[T1, T2 Result] struct {
	index  int
	result Result
}

// From1 chooses the T1 alternative.
func (Results2[T1, T2]) From1(v T1) Results2[T1, T2] {
	return Results2[T1, T2]{index: 1, result: v}
}

func (Results2[T1, T2]) From2(v T2) Results2[T1, T2] {
	return Results2[T1, T2]{index: 2, result: v}
}

// Result returns the chosen alternative, or nil for the zero union.
func (u Results2[T1, T2]) Result() Result { return u.result }

// Index returns the 1-based position of the chosen alternative, or 0.
func (u Results2[T1, T2]) Index() int { return u.index }

func (u Results2[T1, T2]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	return writeUnion(w, r, u.result)
}

// Describe returns the descriptions of every alternative.
func (Results2[T1, T2]) Describe() []ResponseDescription {
	return concatDescriptions(describeOf[T1](), describeOf[T2]())
}

func (Results2[T1, T2]) PopulateResultMetadata(b *EndpointBuilder) {
	DescribeResult[T1](b)
	DescribeResult[T2](b)
}

// Results3 is a union of 3 result types.
type Results3[T1, T2, T3 Result] struct {
	index  int
	result Result
}

// From1 chooses the T1 alternative.
func (Results3[T1, T2, T3]) From1(v T1) Results3[T1, T2, T3] {
	return Results3[T1, T2, T3]{index: 1, result: v}
}

func (Results3[T1, T2, T3]) From2(v T2) Results3[T1, T2, T3] {
	return Results3[T1, T2, T3]{index: 2, result: v}
}

func (Results3[T1, T2, T3]) From3(v T3) Results3[T1, T2, T3] {
	return Results3[T1, T2, T3]{index: 3, result: v}
}

// Result returns the chosen alternative, or nil for the zero union.
func (u Results3[T1, T2, T3]) Result() Result { return u.result }

// Index returns the 1-based position of the chosen alternative, or 0.
func (u Results3[T1, T2, T3]) Index() int { return u.index }

func (u Results3[T1, T2, T3]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	return writeUnion(w, r, u.result)
}

// Describe returns the descriptions of every alternative.
func (Results3[T1, T2, T3]) Describe() []ResponseDescription {
	return concatDescriptions(describeOf[T1](), describeOf[T2](), describeOf[T3]())
}

func (Results3[T1, T2, T3]) PopulateResultMetadata(b *EndpointBuilder) {
	DescribeResult[T1](b)
	DescribeResult[T2](b)
	DescribeResult[T3](b)
}

// Results4 is a union of 4 result types.
type Results4[T1, T2, T3, T4 Result] struct {
	index  int
	result Result
}

// From1 chooses the T1 alternative.
func (Results4[T1, T2, T3, T4]) From1(v T1) Results4[T1, T2, T3, T4] {
	return Results4[T1, T2, T3, T4]{index: 1, result: v}
}

func (Results4[T1, T2, T3, T4]) From2(v T2) Results4[T1, T2, T3, T4] {
	return Results4[T1, T2, T3, T4]{index: 2, result: v}
}

func (Results4[T1, T2, T3, T4]) From3(v T3) Results4[T1, T2, T3, T4] {
	return Results4[T1, T2, T3, T4]{index: 3, result: v}
}

func (Results4[T1, T2, T3, T4]) From4(v T4) Results4[T1, T2, T3, T4] {
	return Results4[T1, T2, T3, T4]{index: 4, result: v}
}

// Result returns the chosen alternative, or nil for the zero union.
func (u Results4[T1, T2, T3, T4]) Result() Result { return u.result }

// Index returns the 1-based position of the chosen alternative, or 0.
func (u Results4[T1, T2, T3, T4]) Index() int { return u.index }

func (u Results4[T1, T2, T3, T4]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	return writeUnion(w, r, u.result)
}

// Describe returns the descriptions of every alternative.
func (Results4[T1, T2, T3, T4]) Describe() []ResponseDescription {
	return concatDescriptions(describeOf[T1](), describeOf[T2](), describeOf[T3](), describeOf[T4]())
}

func (Results4[T1, T2, T3, T4]) PopulateResultMetadata(b *EndpointBuilder) {
	DescribeResult[T1](b)
	DescribeResult[T2](b)
	DescribeResult[T3](b)
	DescribeResult[T4](b)
}

// Results5 is a union of 5 result types.
type Results5[T1, T2, T3, T4, T5 Result] struct {
	index  int
	result Result
}

// From1 chooses the T1 alternative.
func (Results5[T1, T2, T3, T4, T5]) From1(v T1) Results5[T1, T2, T3, T4, T5] {
	return Results5[T1, T2, T3, T4, T5]{index: 1, result: v}
}

func (Results5[T1, T2, T3, T4, T5]) From2(v T2) Results5[T1, T2, T3, T4, T5] {
	return Results5[T1, T2, T3, T4, T5]{index: 2, result: v}
}

func (Results5[T1, T2, T3, T4, T5]) From3(v T3) Results5[T1, T2, T3, T4, T5] {
	return Results5[T1, T2, T3, T4, T5]{index: 3, result: v}
}

func (Results5[T1, T2, T3, T4, T5]) From4(v T4) Results5[T1, T2, T3, T4, T5] {
	return Results5[T1, T2, T3, T4, T5]{index: 4, result: v}
}

func (Results5[T1, T2, T3, T4, T5]) From5(v T5) Results5[T1, T2, T3, T4, T5] {
	return Results5[T1, T2, T3, T4, T5]{index: 5, result: v}
}

// Result returns the chosen alternative, or nil for the zero union.
func (u Results5[T1, T2, T3, T4, T5]) Result() Result { return u.result }

// Index returns the 1-based position of the chosen alternative, or 0.
func (u Results5[T1, T2, T3, T4, T5]) Index() int { return u.index }

func (u Results5[T1, T2, T3, T4, T5]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	return writeUnion(w, r, u.result)
}

// Describe returns the descriptions of every alternative.
func (Results5[T1, T2, T3, T4, T5]) Describe() []ResponseDescription {
	return concatDescriptions(describeOf[T1](), describeOf[T2](), describeOf[T3](), describeOf[T4](), describeOf[T5]())
}

func (Results5[T1, T2, T3, T4, T5]) PopulateResultMetadata(b *EndpointBuilder) {
	DescribeResult[T1](b)
	DescribeResult[T2](b)
	DescribeResult[T3](b)
	DescribeResult[T4](b)
	DescribeResult[T5](b)
}

// Results6 is a union of 6 result types.
type Results6[T1, T2, T3, T4, T5, T6 Result] struct {
	index  int
	result Result
}

// From1 chooses the T1 alternative.
func (Results6[T1, T2, T3, T4, T5, T6]) From1(v T1) Results6[T1, T2, T3, T4, T5, T6] {
	return Results6[T1, T2, T3, T4, T5, T6]{index: 1, result: v}
}

func (Results6[T1, T2, T3, T4, T5, T6]) From2(v T2) Results6[T1, T2, T3, T4, T5, T6] {
	return Results6[T1, T2, T3, T4, T5, T6]{index: 2, result: v}
}

func (Results6[T1, T2, T3, T4, T5, T6]) From3(v T3) Results6[T1, T2, T3, T4, T5, T6] {
	return Results6[T1, T2, T3, T4, T5, T6]{index: 3, result: v}
}

func (Results6[T1, T2, T3, T4, T5, T6]) From4(v T4) Results6[T1, T2, T3, T4, T5, T6] {
	return Results6[T1, T2, T3, T4, T5, T6]{index: 4, result: v}
}

func (Results6[T1, T2, T3, T4, T5, T6]) From5(v T5) Results6[T1, T2, T3, T4, T5, T6] {
	return Results6[T1, T2, T3, T4, T5, T6]{index: 5, result: v}
}

func (Results6[T1, T2, T3, T4, T5, T6]) From6(v T6) Results6[T1, T2, T3, T4, T5, T6] {
	return Results6[T1, T2, T3, T4, T5, T6]{index: 6, result: v}
}

// Result returns the chosen alternative, or nil for the zero union.
func (u Results6[T1, T2, T3, T4, T5, T6]) Result() Result { return u.result }

// Index returns the 1-based position of the chosen alternative, or 0.
func (u Results6[T1, T2, T3, T4, T5, T6]) Index() int { return u.index }

func (u Results6[T1, T2, T3, T4, T5, T6]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	return writeUnion(w, r, u.result)
}

// Describe returns the descriptions of every alternative.
func (Results6[T1, T2, T3, T4, T5, T6]) Describe() []ResponseDescription {
	return concatDescriptions(describeOf[T1](), describeOf[T2](), describeOf[T3](), describeOf[T4](), describeOf[T5](), describeOf[T6]())
}

func (Results6[T1, T2, T3, T4, T5, T6]) PopulateResultMetadata(b *EndpointBuilder) {
	DescribeResult[T1](b)
	DescribeResult[T2](b)
	DescribeResult[T3](b)
	DescribeResult[T4](b)
	DescribeResult[T5](b)
	DescribeResult[T6](b)
}

func concatDescriptions(groups ...[]ResponseDescription) []ResponseDescription {
	var out []ResponseDescription
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
