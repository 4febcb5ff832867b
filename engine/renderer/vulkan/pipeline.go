package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/geometry"
)

// pipelines holds the two graphics pipelines sharing one layout. They
// differ only in polygon mode.
type pipelines struct {
	layout          vk.PipelineLayout
	objectSetLayout vk.DescriptorSetLayout
	passSetLayout   vk.DescriptorSetLayout
	solid           vk.Pipeline
	wireframe       vk.Pipeline
}

func createUniformSetLayout(context *Context) (vk.DescriptorSetLayout, error) {
	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

func createPipelines(context *Context, renderPass vk.RenderPass, vertPath, fragPath string) (*pipelines, error) {
	objectSetLayout, err := createUniformSetLayout(context)
	if err != nil {
		return nil, err
	}
	passSetLayout, err := createUniformSetLayout(context)
	if err != nil {
		vk.DestroyDescriptorSetLayout(context.LogicalDevice, objectSetLayout, context.Allocator)
		return nil, err
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 2,
		PSetLayouts:    []vk.DescriptorSetLayout{objectSetLayout, passSetLayout},
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(context.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		vk.DestroyDescriptorSetLayout(context.LogicalDevice, objectSetLayout, context.Allocator)
		vk.DestroyDescriptorSetLayout(context.LogicalDevice, passSetLayout, context.Allocator)
		err := fmt.Errorf("failed to create pipeline layout: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	p := &pipelines{
		layout:          layout,
		objectSetLayout: objectSetLayout,
		passSetLayout:   passSetLayout,
	}

	vertModule, err := loadShaderModule(context, vertPath)
	if err != nil {
		p.destroy(context)
		return nil, err
	}
	defer vk.DestroyShaderModule(context.LogicalDevice, vertModule, context.Allocator)
	fragModule, err := loadShaderModule(context, fragPath)
	if err != nil {
		p.destroy(context)
		return nil, err
	}
	defer vk.DestroyShaderModule(context.LogicalDevice, fragModule, context.Allocator)

	p.solid, err = createGraphicsPipeline(context, renderPass, layout, vertModule, fragModule, vk.PolygonModeFill)
	if err != nil {
		p.destroy(context)
		return nil, err
	}
	p.wireframe, err = createGraphicsPipeline(context, renderPass, layout, vertModule, fragModule, vk.PolygonModeLine)
	if err != nil {
		p.destroy(context)
		return nil, err
	}

	core.LogInfo("Graphics pipelines created.")
	return p, nil
}

func createGraphicsPipeline(context *Context, renderPass vk.RenderPass, layout vk.PipelineLayout,
	vertModule, fragModule vk.ShaderModule, polygonMode vk.PolygonMode) (vk.Pipeline, error) {

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertModule,
			PName:  VulkanSafeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  VulkanSafeString("main"),
		},
	}

	binding := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    geometry.VertexStride,
		InputRate: vk.VertexInputRateVertex,
	}
	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: 12},
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{binding},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopologyTriangleList,
	}

	// Viewport and scissor are dynamic so a resize only rebuilds the
	// swapchain, not the pipelines.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: polygonMode,
		LineWidth:   1.0,
		// Clockwise front faces hold because the negative-height
		// viewport keeps the framebuffer y-up.
		CullMode:  vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace: vk.FrontFaceClockwise,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.True,
		DepthWriteEnable: vk.True,
		DepthCompareOp:   vk.CompareOpLess,
	}

	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          renderPass,
	}

	handles := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(
		context.LogicalDevice,
		vk.NullPipelineCache,
		1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo},
		context.Allocator,
		handles); res != vk.Success {
		err := fmt.Errorf("failed to create graphics pipeline: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullPipeline, err
	}
	return handles[0], nil
}

func (p *pipelines) destroy(context *Context) {
	if p.solid != vk.NullPipeline {
		vk.DestroyPipeline(context.LogicalDevice, p.solid, context.Allocator)
		p.solid = vk.NullPipeline
	}
	if p.wireframe != vk.NullPipeline {
		vk.DestroyPipeline(context.LogicalDevice, p.wireframe, context.Allocator)
		p.wireframe = vk.NullPipeline
	}
	if p.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(context.LogicalDevice, p.layout, context.Allocator)
		p.layout = vk.NullPipelineLayout
	}
	if p.objectSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.LogicalDevice, p.objectSetLayout, context.Allocator)
		p.objectSetLayout = vk.NullDescriptorSetLayout
	}
	if p.passSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.LogicalDevice, p.passSetLayout, context.Allocator)
		p.passSetLayout = vk.NullDescriptorSetLayout
	}
}
