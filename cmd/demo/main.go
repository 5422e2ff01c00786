package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"res-errare/core"
	"res-errare/graphics"
	"res-errare/internal/config"
	"res-errare/internal/gpu"
	"res-errare/internal/logger"
	"res-errare/internal/opengl"
	sceneio "res-errare/io"
	"res-errare/renderer"
	"res-errare/scene"
)

// cameraController moves the camera from keyboard and mouse state.
type cameraController struct {
	sensitivity float32
	mouse       core.MouseTracker
}

var movementKeys = []struct {
	key core.Key
	dir scene.Direction
}{
	{core.KeyW, scene.Forward},
	{core.KeyUp, scene.Forward},
	{core.KeyS, scene.Backward},
	{core.KeyDown, scene.Backward},
	{core.KeyA, scene.Left},
	{core.KeyLeft, scene.Left},
	{core.KeyD, scene.Right},
	{core.KeyRight, scene.Right},
}

func (cc *cameraController) Update(window *core.Window, camera *scene.Camera, deltaTime float32) {
	// Cap deltaTime so a hitch does not teleport the camera.
	if deltaTime > 0.05 {
		deltaTime = 0.05
	}
	for _, m := range movementKeys {
		if window.IsKeyPressed(m.key) {
			camera.ProcessMovement(m.dir, deltaTime)
		}
	}
	if window.CursorLocked() {
		dx, dy := cc.mouse.Delta(window.GetCursorPos())
		camera.ProcessMouse(dx, dy, cc.sensitivity)
	}
}

// sceneModel is a loaded model with the instances it is drawn at.
type sceneModel struct {
	model     *scene.Model
	instances []sceneio.InstanceData
}

type app struct {
	cfg    config.Config
	window *core.Window
	dev    gpu.Device

	renderer *renderer.GameRenderer
	shader   *graphics.ShaderProgram
	skybox   *graphics.Skybox
	models   []sceneModel

	camera     *scene.Camera
	controller *cameraController
	dayNight   *DayNight
	wireframe  bool
}

func main() {
	configPath := flag.String("config", "config.yaml", "settings file; defaults are used when it does not exist")
	exportPath := flag.String("export", "", "write the meshes of the first scene model to this OBJ file and exit")
	flag.Parse()

	if err := run(*configPath, *exportPath); err != nil {
		logger.L().Error("demo failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, exportPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	logger.Set(log)
	defer log.Sync()

	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := opengl.Init()
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, window: window, dev: dev}
	defer a.release()
	if err := a.load(); err != nil {
		return err
	}

	if exportPath != "" {
		if len(a.models) == 0 {
			return errors.New("export: scene has no models")
		}
		if err := sceneio.ExportOBJ(exportPath, a.models[0].model.Meshes()); err != nil {
			return err
		}
		logger.L().Info("exported", zap.String("path", exportPath))
		return nil
	}

	a.loop()
	return nil
}

// load builds the renderer and everything the scene file names.
func (a *app) load() error {
	assets := os.DirFS(a.cfg.Assets.Root)
	desc, err := sceneio.ReadScene(assets, a.cfg.Assets.Scene)
	if err != nil {
		return err
	}

	if a.renderer, err = renderer.NewGameRenderer(a.dev); err != nil {
		return err
	}

	if desc.Shader.Vertex == "" {
		a.shader, err = renderer.NewDefaultModelShader(a.dev)
	} else {
		a.shader, err = graphics.NewShaderLoader(assets).LoadProgram(a.dev, desc.Shader.Vertex, desc.Shader.Fragment, desc.Shader.Geometry)
	}
	if err != nil {
		return err
	}
	if err := a.shader.Validate(); err != nil {
		logger.L().Warn("model shader did not validate", zap.Error(err))
	}

	for _, entry := range desc.Models {
		m, err := scene.LoadModel(a.dev, assets, entry.Path, entry.Flip)
		if err != nil {
			return err
		}
		a.models = append(a.models, sceneModel{model: m, instances: entry.Instances})
	}

	if sky := desc.Skybox; sky != nil {
		cube, err := graphics.LoadCubeMapFromDirectory(a.dev, assets, sky.Dir, sky.Ext, sky.Flip)
		if err != nil {
			return err
		}
		if a.skybox, err = renderer.NewDefaultSkybox(a.dev, cube); err != nil {
			cube.Delete()
			return err
		}
	}

	a.camera = scene.NewCamera()
	a.camera.Position = a.cfg.Camera.Position
	a.camera.Speed = a.cfg.Camera.Speed
	a.camera.SetAngle(a.cfg.Camera.Yaw, a.cfg.Camera.Pitch)
	a.controller = &cameraController{sensitivity: a.cfg.Camera.Sensitivity}
	a.dayNight = NewDayNight()

	logger.L().Info("scene loaded",
		zap.String("scene", desc.Name),
		zap.Int("models", len(a.models)),
		zap.Bool("skybox", a.skybox != nil))
	return nil
}

func (a *app) onKey(key core.Key) {
	switch key {
	case core.KeyEscape:
		a.window.Close()
	case core.KeyEnter:
		a.wireframe = !a.wireframe
		mode := uint32(gpu.Fill)
		if a.wireframe {
			mode = gpu.Line
		}
		a.dev.PolygonMode(gpu.FrontAndBack, mode)
	case core.KeyT:
		a.window.SetCursorLocked(!a.window.CursorLocked())
		a.controller.mouse.Reset()
	case core.KeyN:
		a.dayNight.Active = !a.dayNight.Active
	}
}

func (a *app) loop() {
	a.renderer.SetupProjection(a.window.Width, a.window.Height)
	a.window.OnFramebufferResize(a.renderer.SetupProjection)
	a.window.OnKeyPress(a.onKey)
	a.window.SetCursorLocked(true)

	var (
		overlay DebugOverlay
		fps     fpsCounter
		last    = a.window.Time()
	)
	for !a.window.ShouldClose() {
		now := a.window.Time()
		dt := float32(now - last)
		last = now

		a.window.PollEvents()
		a.controller.Update(a.window, a.camera, dt)
		a.renderer.UpdateView(a.camera.ViewMatrix())
		a.dayNight.Update(dt)

		a.dayNight.Apply(a.dev, a.shader)
		a.dev.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
		frustum := scene.FrustumFromVP(a.renderer.Projection().Mul4(a.camera.ViewMatrix()))
		culled := 0
		for _, sm := range a.models {
			for _, inst := range sm.instances {
				model := inst.ModelMatrix(float32(now))
				if !sm.model.Bounds().Transform(model).IntersectsFrustum(&frustum) {
					culled++
					continue
				}
				a.shader.Use()
				a.shader.SetMat4("model", model)
				sm.model.Draw(a.shader)
			}
		}
		if a.skybox != nil {
			a.renderer.DrawSkybox(a.skybox)
		}
		a.window.SwapBuffers()

		if fps.Frame(time.Now()) {
			p := a.camera.Position
			overlay.Clear()
			overlay.AddLine("%s", a.cfg.Window.Title)
			overlay.AddLine("FPS: %d", fps.FPS())
			overlay.AddLine("(%.1f, %.1f, %.1f)", p.X(), p.Y(), p.Z())
			overlay.AddLine("%s", a.dayNight.TimeOfDayStr())
			overlay.AddLine("culled %d", culled)
			if a.wireframe {
				overlay.AddLine("wire")
			}
			a.window.SetTitle(overlay.GetText())
		}
	}
}

// release frees GPU objects in reverse creation order.
func (a *app) release() {
	if a.skybox != nil {
		a.skybox.Delete()
	}
	for i := len(a.models) - 1; i >= 0; i-- {
		a.models[i].model.Delete()
	}
	if a.shader != nil {
		a.shader.Delete()
	}
	if a.renderer != nil {
		a.renderer.Delete()
	}
}
