/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package grpc_recogniser exposes a recogniser.Client over gRPC and calls one.
//
// The service has a single unary method taking the fragment as a StringValue and returning
// a Struct of the form {"entities": [{"label": "PER", "start": 0, "end": 8}]}, with byte offsets.
package grpc_recogniser

import (
	"context"
	"fmt"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName     = "anonymiser.Recogniser"
	RecogniseMethod = "/anonymiser.Recogniser/Recognise"
)

func New(conn grpc.ClientConnInterface) recogniser.Client {
	return &grpcRecogniser{conn: conn}
}

type grpcRecogniser struct {
	conn grpc.ClientConnInterface
}

func (g *grpcRecogniser) Recognise(ctx context.Context, fragment string) ([]entity.RawSpan, error) {
	out := new(structpb.Struct)
	if err := g.conn.Invoke(ctx, RecogniseMethod, wrapperspb.String(fragment), out); err != nil {
		return nil, fmt.Errorf("grpc recogniser: %w", err)
	}
	return decode(out)
}

type recogniserServer interface {
	Recognise(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

type server struct {
	recogniser recogniser.Client
}

func (s server) Recognise(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	spans, err := s.recogniser.Recognise(ctx, in.GetValue())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return encode(spans)
}

// RegisterServer serves r on s.
func RegisterServer(s grpc.ServiceRegistrar, r recogniser.Client) {
	s.RegisterService(&serviceDesc, server{recogniser: r})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*recogniserServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Recognise",
			Handler:    recogniseHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "anonymiser/recogniser",
}

func recogniseHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(recogniserServer).Recognise(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RecogniseMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(recogniserServer).Recognise(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func encode(spans []entity.RawSpan) (*structpb.Struct, error) {
	entities := make([]interface{}, 0, len(spans))
	for _, s := range spans {
		entities = append(entities, map[string]interface{}{
			"label": s.Label,
			"start": s.Start,
			"end":   s.End,
		})
	}
	return structpb.NewStruct(map[string]interface{}{"entities": entities})
}

func decode(out *structpb.Struct) ([]entity.RawSpan, error) {
	values := out.GetFields()["entities"].GetListValue().GetValues()
	spans := make([]entity.RawSpan, 0, len(values))
	for i, v := range values {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("grpc recogniser: entity %d is not an object", i)
		}
		spans = append(spans, entity.RawSpan{
			Label: fields["label"].GetStringValue(),
			Start: int(fields["start"].GetNumberValue()),
			End:   int(fields["end"].GetNumberValue()),
		})
	}
	return spans, nil
}
